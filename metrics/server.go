package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InfoMetrics holds process-level metadata metrics: version and uptime,
// the minimum a scrape needs to tell which build is running and for how
// long, without the chat-specific provider/model labels this package's
// teacher exposed (SPEC_FULL.md §6.4).
type InfoMetrics struct {
	Info   *prometheus.GaugeVec
	uptime prometheus.GaugeFunc
}

// NewInfoMetrics creates and registers the info/uptime metrics. startTime
// is the shell's boot time, used to compute uptime.
func NewInfoMetrics(version string, startTime time.Time) *InfoMetrics {
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "shell",
		Name:      "info",
		Help:      "Shell build metadata. Value is always 1.",
	}, []string{"version"})

	info.WithLabelValues(version).Set(1)

	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "shell",
		Name:      "uptime_seconds",
		Help:      "Shell process uptime in seconds.",
	}, func() float64 {
		return time.Since(startTime).Seconds()
	})

	Registry.MustRegister(info, uptime)

	return &InfoMetrics{Info: info, uptime: uptime}
}
