package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// ErrWorkerPanic wraps a panic recovered from a task.
var ErrWorkerPanic = errors.New("worker panic")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// Task processes job index i using the calling worker's private state.
type Task[S any] func(ctx context.Context, state S, index int) error

// WorkerPool runs indexed jobs [0, n) on a bounded set of goroutines.
// Job indices are handed out over a bounded channel; each index is claimed
// by exactly one worker. Every worker creates its state once and reuses it
// for all the jobs it claims, so state never crosses goroutines.
type WorkerPool[S any] struct {
	workers  int
	newState func(worker int) S
	task     Task[S]

	active    atomic.Int64
	completed atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers.
// Returns an error if the worker count exceeds MaxWorkers.
func NewWorkerPool[S any](workers int, newState func(worker int) S, task Task[S]) (*WorkerPool[S], error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}
	if newState == nil || task == nil {
		return nil, errors.New("newState and task must be non-nil")
	}

	return &WorkerPool[S]{
		workers:  workers,
		newState: newState,
		task:     task,
	}, nil
}

// Workers returns the configured worker count.
func (wp *WorkerPool[S]) Workers() int {
	return wp.workers
}

// Active returns the number of workers currently running a task.
func (wp *WorkerPool[S]) Active() int {
	return int(wp.active.Load())
}

// Completed returns the number of tasks finished without error.
func (wp *WorkerPool[S]) Completed() int {
	return int(wp.completed.Load())
}

// Run executes jobs 0..n-1 and blocks until every worker has exited.
// min(workers, n) goroutines are started. The first task error (or
// recovered panic) cancels the remaining unclaimed jobs; in-flight tasks
// observe the cancelled context. Run returns that first error, or the
// parent context's error if it was cancelled, only after all workers
// have been joined.
func (wp *WorkerPool[S]) Run(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(wp.workers, n)
	jobs := make(chan int, workers*2) // Buffer for 2x workers

	var (
		firstErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
		done     atomic.Int64
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			state := wp.newState(worker)
			for index := range jobs {
				if ctx.Err() != nil {
					continue // drain
				}
				if err := wp.runTask(ctx, state, index); err != nil {
					fail(err)
					continue
				}
				done.Add(1)
				wp.completed.Add(1)
			}
		}(w)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if int(done.Load()) == n {
		return nil
	}
	return ctx.Err()
}

// runTask executes a single task, converting a panic into an error so a
// failing job cannot take down the process or strand the join.
func (wp *WorkerPool[S]) runTask(ctx context.Context, state S, index int) (err error) {
	wp.active.Add(1)
	defer wp.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: job %d: %v\n%s", ErrWorkerPanic, index, r, debug.Stack())
		}
	}()
	return wp.task(ctx, state, index)
}
