package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunspot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sunspot_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunspot_horizons_fetches_total",
			Help: "Total Horizons fetch attempts by outcome (ok, fault, error).",
		},
		[]string{"outcome"},
	)

	fetchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sunspot_horizons_fetch_duration_seconds",
			Help:    "Duration of Horizons fetch calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	tableRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunspot_ephemeris_table_rows",
			Help: "Data rows in the currently loaded ephemeris table.",
		},
	)

	tableColumns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunspot_ephemeris_table_columns",
			Help: "Columns in the currently loaded ephemeris table.",
		},
	)

	tableAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunspot_ephemeris_table_age_seconds",
			Help: "Age of the currently loaded ephemeris table in seconds.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(fetchesTotal)
	prometheus.MustRegister(fetchDurationSeconds)
	prometheus.MustRegister(tableRows)
	prometheus.MustRegister(tableColumns)
	prometheus.MustRegister(tableAgeSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one Horizons fetch attempt. Outcome is "ok", "fault"
// for a recognized service fault, or "error" for transport/parse failures.
func ObserveFetch(outcome string, d time.Duration) {
	fetchesTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.Observe(d.Seconds())
}

// SetTableDimensions updates the row/column gauges for the loaded table.
func SetTableDimensions(rows, columns int) {
	tableRows.Set(float64(rows))
	tableColumns.Set(float64(columns))
}

// SetTableAge updates the loaded-table age gauge.
func SetTableAge(seconds float64) {
	tableAgeSeconds.Set(seconds)
}

// knownRoutes are the exact paths the server registers. Anything else is
// collapsed into one label to keep metric cardinality bounded against
// scanner traffic.
var knownRoutes = map[string]bool{
	"/":                            true,
	"/healthz":                     true,
	"/readyz":                      true,
	"/metrics":                     true,
	"/api/v1/ephemeris/refresh":    true,
	"/api/v1/ephemeris/columns":    true,
	"/api/v1/ephemeris/values":     true,
	"/api/v1/ephemeris/dates":      true,
	"/api/v1/ephemeris/correspond": true,
	"/api/v1/archive/recent":       true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
