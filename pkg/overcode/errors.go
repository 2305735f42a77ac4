package overcode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams is returned before any run starts when the
	// parameters or the graph cannot be simulated.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrEngineNotRun is returned when results are requested before Run completed.
	ErrEngineNotRun = errors.New("engine has not completed a run")

	// ErrRunFailed marks an ensemble that was aborted by a failing run.
	ErrRunFailed = errors.New("ensemble run failed")
)

// RunError records which ensemble run failed and why.
type RunError struct {
	Run   int
	Cause error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d: %v", e.Run, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Cause
}

// Is matches ErrRunFailed so callers can test for any run failure without
// caring about the cause.
func (e *RunError) Is(target error) bool {
	return target == ErrRunFailed
}
