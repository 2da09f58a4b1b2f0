package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPipelineMetrics(t *testing.T) {
	m := NewPipelineMetrics()

	m.ObserveRun("success", 1500*time.Millisecond)
	m.ObserveRun("failed", 20*time.Millisecond)
	m.ObserveRun("success", time.Second)
	m.AddRows("feature", 27)
	m.AddRows("label", 38)
	m.AddRows("label", 0)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("success")); got != 2 {
		t.Fatalf("unexpected success runs: got=%v want=2", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("failed")); got != 1 {
		t.Fatalf("unexpected failed runs: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(m.rows.WithLabelValues("label")); got != 38 {
		t.Fatalf("unexpected label rows: got=%v want=38", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `fantasy_forecast_pipeline_rows_total{kind="feature"} 27`) {
		t.Fatalf("metrics output missing feature rows:\n%s", rec.Body.String())
	}
}
