package telemetry_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dashboard-aggregates-service/internal/platform/telemetry"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := telemetry.NewMetrics()
	b := telemetry.NewMetrics()

	a.NoiseDraws.Add(3)

	if got := testutil.ToFloat64(a.NoiseDraws); got != 3 {
		t.Fatalf("expected 3 draws, got %v", got)
	}
	if got := testutil.ToFloat64(b.NoiseDraws); got != 0 {
		t.Fatalf("expected registries to be independent, got %v", got)
	}
}

func TestHandler_ExposesNamespace(t *testing.T) {
	m := telemetry.NewMetrics()
	m.CacheHits.WithLabelValues("cohort").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `dashboard_aggregates_cache_hits_total{kind="cohort"} 1`) {
		t.Fatalf("expected cache hit series in output:\n%s", body)
	}
}
