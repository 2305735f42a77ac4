package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initSystemMetrics registers the Go runtime and process collectors next
// to the uptime gauge.
func (r *Registry) initSystemMetrics() {
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.UptimeSeconds = promauto.With(r.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "overcode_uptime_seconds",
			Help: "Time since the registry was created in seconds",
		},
		func() float64 { return time.Since(r.started).Seconds() },
	)
}
