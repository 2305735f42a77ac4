package overcode

import "time"

// Recorder receives ensemble measurements. *metrics.Registry implements it.
type Recorder interface {
	RecordRun(status string, d time.Duration)
	RecordEnsemble(runs int, d time.Duration)
	SetActiveWorkers(n int)
	RecordSymbols(r, b, uncertain int)
	RecordClusters(clusters, memberships int)
}

// Run status labels passed to RecordRun.
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type nopRecorder struct{}

func (nopRecorder) RecordRun(string, time.Duration)   {}
func (nopRecorder) RecordEnsemble(int, time.Duration) {}
func (nopRecorder) SetActiveWorkers(int)              {}
func (nopRecorder) RecordSymbols(int, int, int)       {}
func (nopRecorder) RecordClusters(int, int)           {}
