package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEnsembleMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcode_runs_total",
			Help: "Total number of protocol runs by status",
		},
		[]string{"status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overcode_run_duration_seconds",
			Help:    "Duration of a single protocol run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 18), // 100µs to ~13s
		},
	)

	r.EnsemblesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "overcode_ensembles_total",
			Help: "Total number of completed ensembles",
		},
	)

	r.EnsembleDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overcode_ensemble_duration_seconds",
			Help:    "Wall time of a full ensemble in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms to ~5min
		},
	)

	r.ActiveWorkers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_active_workers",
			Help: "Number of workers in the running ensemble pool",
		},
	)
}
