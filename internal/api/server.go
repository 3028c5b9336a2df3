package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/indigo-pc/sunspot/internal/archive"
	"github.com/indigo-pc/sunspot/internal/auth"
	"github.com/indigo-pc/sunspot/internal/health"
	"github.com/indigo-pc/sunspot/internal/httputil"
	"github.com/indigo-pc/sunspot/internal/metrics"
	"github.com/indigo-pc/sunspot/internal/service"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server. arch may be nil when archiving
// is disabled; the archive routes then report it as unavailable.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, svc *service.Service, arch *archive.Store) *Server {
	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool { return svc.Latest() != nil }))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/v1/ephemeris/refresh", refreshHandler(logger, svc))
	mux.HandleFunc("GET /api/v1/ephemeris/columns", columnsHandler(svc))
	mux.HandleFunc("GET /api/v1/ephemeris/values", valuesHandler(svc))
	mux.HandleFunc("GET /api/v1/ephemeris/dates", datesHandler(svc))
	mux.HandleFunc("GET /api/v1/ephemeris/correspond", correspondHandler(svc))
	mux.HandleFunc("GET /api/v1/archive/recent", archiveRecentHandler(logger, arch))

	// Build middleware chain: metrics -> request id -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = httputil.RequestIDMiddleware(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second, // refresh waits on the Horizons call
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, false),
				"request_id", httputil.RequestID(r.Context()),
			)
		})
	}
}
