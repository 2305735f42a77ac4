package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Ensemble Metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	EnsemblesTotal   prometheus.Counter
	EnsembleDuration prometheus.Histogram
	ActiveWorkers    prometheus.Gauge

	// Detection Metrics
	SignatureSymbolsTotal   *prometheus.CounterVec
	ClustersDetected        prometheus.Gauge
	ClusterMembershipsTotal prometheus.Counter
	OverlappingNodes        prometheus.Gauge

	// Experiment Metrics
	GraphsTotal          *prometheus.CounterVec
	GraphNodes           prometheus.Gauge
	GraphEdges           prometheus.Gauge
	MatchJaccard         prometheus.Histogram
	MisclassifiedNodes   prometheus.Gauge
	ReportUploadsTotal   *prometheus.CounterVec
	ReportUploadDuration *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds prometheus.GaugeFunc

	registry *prometheus.Registry
	started  time.Time
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		started:  time.Now(),
	}

	// Initialize all metrics
	r.initEnsembleMetrics()
	r.initDetectionMetrics()
	r.initExperimentMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
