package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExperimentMetrics() {
	r.GraphsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcode_graphs_total",
			Help: "Total number of graphs processed, by source",
		},
		[]string{"source"},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_graph_nodes",
			Help: "Node count of the current graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_graph_edges",
			Help: "Edge count of the current graph",
		},
	)

	r.MatchJaccard = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overcode_match_jaccard",
			Help:    "Jaccard index of detected clusters matched to ground truth",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	r.MisclassifiedNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_misclassified_nodes",
			Help: "Misclassified nodes in the most recent evaluation",
		},
	)

	r.ReportUploadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcode_report_uploads_total",
			Help: "Total number of report uploads by sink and status",
		},
		[]string{"sink", "status"},
	)

	r.ReportUploadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overcode_report_upload_duration_seconds",
			Help:    "Report upload duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)
}
