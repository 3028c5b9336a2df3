package metrics

import "testing"

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/ephemeris/refresh", "/api/v1/ephemeris/refresh"},
		{"/api/v1/ephemeris/columns", "/api/v1/ephemeris/columns"},
		{"/api/v1/ephemeris/values", "/api/v1/ephemeris/values"},
		{"/api/v1/ephemeris/dates", "/api/v1/ephemeris/dates"},
		{"/api/v1/ephemeris/correspond", "/api/v1/ephemeris/correspond"},
		{"/api/v1/archive/recent", "/api/v1/archive/recent"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that arbitrary scanner paths produce one
// label, not one per path.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range []string{"/a", "/b", "/c/d", "/admin.php", "/api/v1/ephemeris/refreshx"} {
		seen[normalizeRoute(p)] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for unknown paths, got %d: %v", len(seen), seen)
	}
}
