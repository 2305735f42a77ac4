package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDetectionMetrics() {
	r.SignatureSymbolsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcode_signature_symbols_total",
			Help: "Total number of signature symbols produced, by symbol",
		},
		[]string{"symbol"},
	)

	r.ClustersDetected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_clusters_detected",
			Help: "Number of clusters found by the most recent ensemble",
		},
	)

	r.ClusterMembershipsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "overcode_cluster_memberships_total",
			Help: "Total number of node-to-cluster assignments",
		},
	)

	r.OverlappingNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "overcode_overlapping_nodes",
			Help: "Nodes belonging to more than one cluster in the most recent ensemble",
		},
	)
}
