// Package horizons retrieves observer-table ephemerides from the NASA/JPL
// Horizons API. The service is not affiliated with this project; see
// https://ssd.jpl.nasa.gov/horizons/manual.html for its documentation.
package horizons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://ssd.jpl.nasa.gov/api/horizons.api"

// DefaultQuantities is the quantity-code list used when a query leaves
// Quantities empty: astrometric RA/DEC, apparent RA/DEC, and apparent
// azimuth/elevation.
const DefaultQuantities = "1,2,4"

// maxBodyBytes caps how much of a response body is read. Horizons tables top
// out at 90024 entries, far below this.
const maxBodyBytes = 50 * 1024 * 1024

// fixedOptions are the protocol-level options sent with every request:
// plain-text output, geodetic observer coordinates, calendar dates with
// seconds, degree-valued angles, and CSV-delimited data rows. The parser
// depends on CSV_FORMAT and TIME_DIGITS staying as they are here.
const fixedOptions = "format=text" +
	"&MAKE_EPHEM='YES'" +
	"&EPHEM_TYPE='OBSERVER'" +
	"&COORD_TYPE='GEODETIC'" +
	"&CENTER='coord@399'" +
	"&REF_SYSTEM='ICRF'" +
	"&CAL_FORMAT='CAL'" +
	"&CAL_TYPE='M'" +
	"&TIME_DIGITS='SECONDS'" +
	"&ANG_FORMAT='DEG'" +
	"&APPARENT='AIRLESS'" +
	"&RANGE_UNITS='AU'" +
	"&SUPPRESS_RANGE_RATE='NO'" +
	"&SKIP_DAYLT='NO'" +
	"&SOLAR_ELONG='0,180'" +
	"&EXTRA_PREC='YES'" +
	"&R_T_S_ONLY='NO'" +
	"&CSV_FORMAT='YES'" +
	"&OBJ_DATA='YES'"

// Query holds the caller-supplied fields of one ephemeris request. All fields
// are opaque strings passed through to the service unvalidated; malformed
// values surface as RemoteServiceFault from the service's own checks.
type Query struct {
	StartTime        string // "YYYY-MM-DD HH:MM:SS"
	StopTime         string // "YYYY-MM-DD HH:MM:SS"
	ObserverLocation string // "lat,lon,elev_km" in fractional degrees / kilometers
	StepSize         string // "<n> <unit>", 1 <= n <= 90024
	TargetBody       string // body identifier from the Horizons index
	Quantities       string // comma-separated quantity codes; empty means DefaultQuantities
}

// Client issues ephemeris queries against one Horizons endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint. An empty endpoint
// selects the public Horizons API.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch issues one GET for the query and returns the raw response text.
// The body is scanned for the known fault phrases before being returned;
// a match fails the fetch with RemoteServiceFault.
func (c *Client) Fetch(ctx context.Context, q Query) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(q), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching ephemeris: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, c.endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return "", fmt.Errorf("response exceeds %d byte limit", maxBodyBytes)
	}

	text := string(body)
	if fault := DetectFault(text); fault != nil {
		return "", fault
	}
	return text, nil
}

// buildURL assembles the request URL from the fixed options and the query
// fields, each quoted the way the Horizons API expects. Spaces are the only
// characters in valid field values that need escaping.
func (c *Client) buildURL(q Query) string {
	quantities := q.Quantities
	if quantities == "" {
		quantities = DefaultQuantities
	}
	u := c.endpoint + "?" + fixedOptions +
		"&COMMAND='" + q.TargetBody + "'" +
		"&SITE_COORD='" + q.ObserverLocation + "'" +
		"&START_TIME='" + q.StartTime + "'" +
		"&STOP_TIME='" + q.StopTime + "'" +
		"&STEP_SIZE='" + q.StepSize + "'" +
		"&QUANTITIES='" + quantities + "'"
	return strings.ReplaceAll(u, " ", "%20")
}
