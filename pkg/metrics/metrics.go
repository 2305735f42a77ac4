package metrics

import (
	"time"
)

// RecordRun records one protocol run with its outcome
func (r *Registry) RecordRun(status string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		r.RunDuration.Observe(duration.Seconds())
	}
}

// RecordEnsemble records a completed ensemble
func (r *Registry) RecordEnsemble(runs int, duration time.Duration) {
	r.EnsemblesTotal.Inc()
	r.EnsembleDuration.Observe(duration.Seconds())
}

// SetActiveWorkers sets the size of the running worker pool
func (r *Registry) SetActiveWorkers(n int) {
	r.ActiveWorkers.Set(float64(n))
}

// RecordSymbols adds the symbol totals of one ensemble's signatures
func (r *Registry) RecordSymbols(red, blue, uncertain int) {
	r.SignatureSymbolsTotal.WithLabelValues("R").Add(float64(red))
	r.SignatureSymbolsTotal.WithLabelValues("B").Add(float64(blue))
	r.SignatureSymbolsTotal.WithLabelValues("U").Add(float64(uncertain))
}

// RecordClusters records the clusters found by one ensemble
func (r *Registry) RecordClusters(clusters, memberships int) {
	r.ClustersDetected.Set(float64(clusters))
	r.ClusterMembershipsTotal.Add(float64(memberships))
}

// RecordOverlap sets how many nodes belong to more than one cluster
func (r *Registry) RecordOverlap(membershipCounts []int) {
	overlapping := 0
	for _, c := range membershipCounts {
		if c > 1 {
			overlapping++
		}
	}
	r.OverlappingNodes.Set(float64(overlapping))
}

// RecordGraph records a graph entering the pipeline
func (r *Registry) RecordGraph(source string, nodes, edges int) {
	r.GraphsTotal.WithLabelValues(source).Inc()
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// RecordEvaluation records the outcome of comparing against ground truth
func (r *Registry) RecordEvaluation(jaccards []float64, misclassified int) {
	for _, j := range jaccards {
		r.MatchJaccard.Observe(j)
	}
	r.MisclassifiedNodes.Set(float64(misclassified))
}

// RecordUpload records a report upload to a sink
func (r *Registry) RecordUpload(sink, status string, duration time.Duration) {
	r.ReportUploadsTotal.WithLabelValues(sink, status).Inc()
	r.ReportUploadDuration.WithLabelValues(sink).Observe(duration.Seconds())
}
