package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommandMetrics holds Prometheus metrics for command dispatch and
// execution, satisfying executor.Metrics (SPEC_FULL.md §6.4).
type CommandMetrics struct {
	Total          *prometheus.CounterVec
	DurationSecond *prometheus.HistogramVec
	ExecFailures   *prometheus.CounterVec
}

// NewCommandMetrics creates and registers command dispatch metrics.
func NewCommandMetrics() *CommandMetrics {
	m := &CommandMetrics{
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "commands",
			Name:      "total",
			Help:      "Total commands dispatched, by strategy (special_builtin, builtin, function, external).",
		}, []string{"strategy"}),

		DurationSecond: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Histogram of command execution durations in seconds, by strategy.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),

		ExecFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "exec",
			Name:      "failures_total",
			Help:      "Total command execution failures by reason (not_found, fork_failed).",
		}, []string{"reason"}),
	}

	Registry.MustRegister(m.Total, m.DurationSecond, m.ExecFailures)

	return m
}

// ObserveCommand records one dispatched command's strategy and latency.
func (m *CommandMetrics) ObserveCommand(strategy string, seconds float64) {
	m.Total.WithLabelValues(strategy).Inc()
	m.DurationSecond.WithLabelValues(strategy).Observe(seconds)
}

// IncExecFailure records one execution failure by reason.
func (m *CommandMetrics) IncExecFailure(reason string) {
	m.ExecFailures.WithLabelValues(reason).Inc()
}
