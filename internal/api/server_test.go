package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/indigo-pc/sunspot/internal/auth"
	"github.com/indigo-pc/sunspot/internal/horizons"
	"github.com/indigo-pc/sunspot/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

const sampleResponse = `header
 Date__(UT)__HR:MN:SS, Elev_(a-app),
separator
$$SOE
 1988-Dec-08 01:02:03,  10.5210,
 1988-Dec-09 01:02:03,  11.0357,
$$EOE
footer
`

const refreshBody = `{
	"start_time": "1988-12-08 01:02:03",
	"stop_time": "1988-12-09 01:02:03",
	"observer_location": "42.458790,-71.332597,0.041",
	"step_size": "1 d",
	"target_body": "10"
}`

// newTestServer wires a Server against a stub Horizons endpoint returning
// body, with auth disabled unless cfg says otherwise.
func newTestServer(t *testing.T, body string, authCfg auth.Config) *Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(upstream.Close)

	logger := testLogger()
	svc := service.New(horizons.NewClient(upstream.URL), nil, nil, nil, logger)
	return NewServer(":0", logger, authCfg, svc, nil)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestReadyzBeforeAndAfterRefresh(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})

	if w := do(t, srv, "GET", "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before refresh = %d, want 503", w.Code)
	}
	if w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", refreshBody); w.Code != http.StatusOK {
		t.Fatalf("refresh = %d, want 200: %s", w.Code, w.Body)
	}
	if w := do(t, srv, "GET", "/readyz", ""); w.Code != http.StatusOK {
		t.Errorf("readyz after refresh = %d, want 200", w.Code)
	}
}

func TestQueriesRequireLoadedTable(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})

	for _, path := range []string{
		"/api/v1/ephemeris/columns",
		"/api/v1/ephemeris/values?title=x",
		"/api/v1/ephemeris/dates",
		"/api/v1/ephemeris/correspond?target=a&source=b&value=c",
	} {
		if w := do(t, srv, "GET", path, ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d before refresh, want 503", path, w.Code)
		}
	}
}

func TestColumnsAndValues(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})
	if w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", refreshBody); w.Code != http.StatusOK {
		t.Fatalf("refresh = %d: %s", w.Code, w.Body)
	}

	w := do(t, srv, "GET", "/api/v1/ephemeris/columns", "")
	if w.Code != http.StatusOK {
		t.Fatalf("columns = %d", w.Code)
	}
	var cols struct {
		Columns []string `json:"columns"`
		Rows    int      `json:"rows"`
	}
	if err := json.NewDecoder(w.Body).Decode(&cols); err != nil {
		t.Fatalf("decoding columns: %v", err)
	}
	if len(cols.Columns) != 2 || cols.Rows != 2 {
		t.Errorf("columns = %v rows = %d, want 2 columns and 2 rows", cols.Columns, cols.Rows)
	}

	if w := do(t, srv, "GET", "/api/v1/ephemeris/values?title=Elev_(a-app)", ""); w.Code != http.StatusOK {
		t.Errorf("values = %d, want 200", w.Code)
	}
	if w := do(t, srv, "GET", "/api/v1/ephemeris/values?title=bogus", ""); w.Code != http.StatusBadRequest {
		t.Errorf("values with unknown title = %d, want 400", w.Code)
	}
}

func TestCorrespondEndpoint(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})
	if w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", refreshBody); w.Code != http.StatusOK {
		t.Fatalf("refresh = %d: %s", w.Code, w.Body)
	}

	path := "/api/v1/ephemeris/correspond?target=Elev_(a-app)&source=Date__(UT)__HR:MN:SS&value=" +
		"1988-Dec-09%2001:02:03"
	w := do(t, srv, "GET", path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("correspond = %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Found bool   `json:"found"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding correspond: %v", err)
	}
	if !resp.Found || resp.Value != "11.0357" {
		t.Errorf("correspond = %+v, want found 11.0357", resp)
	}

	// Absent value is an empty result, not an error.
	w = do(t, srv, "GET", "/api/v1/ephemeris/correspond?target=Elev_(a-app)&source=Date__(UT)__HR:MN:SS&value=nope", "")
	if w.Code != http.StatusOK {
		t.Fatalf("correspond absent = %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding correspond: %v", err)
	}
	if resp.Found {
		t.Error("correspond reported found for an absent value")
	}
}

func TestRefreshRemoteFault(t *testing.T) {
	srv := newTestServer(t, "No matches found.\n", auth.Config{})

	w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", refreshBody)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("refresh = %d, want 502: %s", w.Code, w.Body)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding fault: %v", err)
	}
	if resp["phrase"] != "No matches found." {
		t.Errorf("phrase = %q", resp["phrase"])
	}
	if resp["hint"] == "" {
		t.Error("fault response carries no hint")
	}
}

func TestRefreshMalformedUpstream(t *testing.T) {
	srv := newTestServer(t, "no sentinels\n", auth.Config{})
	if w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", refreshBody); w.Code != http.StatusBadGateway {
		t.Errorf("refresh = %d, want 502", w.Code)
	}
}

func TestRefreshInvalidBody(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})
	if w := do(t, srv, "POST", "/api/v1/ephemeris/refresh", "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("refresh = %d, want 400", w.Code)
	}
}

func TestArchiveDisabled(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})
	if w := do(t, srv, "GET", "/api/v1/archive/recent", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("archive recent = %d, want 503", w.Code)
	}
}

func TestAuthEnforced(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{Enabled: true, Token: "secret"})

	if w := do(t, srv, "GET", "/api/v1/ephemeris/columns", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request = %d, want 401", w.Code)
	}

	// Health probes stay public.
	if w := do(t, srv, "GET", "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/ephemeris/columns", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("authenticated request = %d, want 503 (no table yet)", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, sampleResponse, auth.Config{})
	w := do(t, srv, "GET", "/healthz", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}
