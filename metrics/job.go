package metrics

import "github.com/prometheus/client_golang/prometheus"

// JobMetrics holds Prometheus metrics for background job tracking
// (SPEC_FULL.md §6.4).
type JobMetrics struct {
	Active prometheus.Gauge
	Total  *prometheus.CounterVec
}

// NewJobMetrics creates and registers job metrics.
func NewJobMetrics() *JobMetrics {
	m := &JobMetrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "active",
			Help:      "Number of background jobs currently tracked in the job table.",
		}),
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Total background jobs started, by terminal state (done, killed, stopped).",
		}, []string{"state"}),
	}

	Registry.MustRegister(m.Active, m.Total)

	return m
}
