package overcode

import (
	"fmt"
	"runtime"

	"github.com/dd0wney/cluso-overcode/pkg/validation"
)

// Window selects the rounds counted when a run is reduced to a symbol.
type Window string

const (
	// WindowMajority counts rounds 2..T+1, the majority-dynamics rounds.
	WindowMajority Window = "majority"
	// WindowFull counts every round 0..T+1, including initialization and
	// symmetry breaking.
	WindowFull Window = "full"
)

// Params configures the protocol and the ensemble.
type Params struct {
	Rounds          int     `yaml:"rounds" json:"rounds" validate:"gt=0"`
	Pushes          int     `yaml:"pushes" json:"pushes" validate:"gt=0"`
	PullSamples     int     `yaml:"pull_samples" json:"pull_samples" validate:"gt=0"`
	MajoritySamples int     `yaml:"majority_samples" json:"majority_samples" validate:"gt=0"`
	Runs            int     `yaml:"runs" json:"runs" validate:"gt=0"`
	Alpha           float64 `yaml:"alpha" json:"alpha" validate:"gt=0,lte=1"`
	Beta            float64 `yaml:"beta" json:"beta" validate:"gt=0,lte=1"`

	// MaxWorkers caps the worker pool; 0 means GOMAXPROCS.
	MaxWorkers int `yaml:"max_workers" json:"max_workers" validate:"gte=0"`

	// Seed fixes the ensemble's random streams. 0 seeds from entropy.
	Seed uint64 `yaml:"seed" json:"seed"`

	Window Window `yaml:"window" json:"window" validate:"omitempty,oneof=majority full"`
}

// Validate checks the parameters without regard to any graph.
func (p Params) Validate() error {
	if err := validation.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Workers is the size of the pool that executes the ensemble.
func (p Params) Workers() int {
	w := p.MaxWorkers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return min(w, p.Runs)
}

// HistoryLen is the number of rounds recorded per node, rounds 0..T+1.
func (p Params) HistoryLen() int {
	return p.Rounds + 2
}

// window returns the half-open round range counted by the aggregator.
func (p Params) window() (from, to int) {
	if p.Window == WindowFull {
		return 0, p.HistoryLen()
	}
	return 2, p.HistoryLen()
}

// threshold is the count a token needs within the window to decide a run.
func (p Params) threshold() float64 {
	return p.Alpha * float64(p.Rounds)
}
