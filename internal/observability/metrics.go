package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics records feature pipeline runs in a Prometheus registry.
type PipelineMetrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	rows        *prometheus.CounterVec
}

func NewPipelineMetrics() *PipelineMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PipelineMetrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_forecast_pipeline_runs_total",
			Help: "Total number of feature pipeline runs by outcome.",
		}, []string{"status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fantasy_forecast_pipeline_run_duration_seconds",
			Help:    "Wall time of feature pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"status"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_forecast_pipeline_rows_total",
			Help: "Total number of rows emitted by kind (feature, label, snapshot).",
		}, []string{"kind"}),
	}
}

func (m *PipelineMetrics) ObserveRun(status string, duration time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) AddRows(kind string, count int) {
	if count <= 0 {
		return
	}
	m.rows.WithLabelValues(kind).Add(float64(count))
}

// Handler exposes the registry in the Prometheus text format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
