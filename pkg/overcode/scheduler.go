package overcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-overcode/pkg/logging"
	"github.com/dd0wney/cluso-overcode/pkg/parallel"
	"github.com/dd0wney/cluso-overcode/pkg/random"
)

// seededSource is a random stream that can be restarted per run.
type seededSource interface {
	random.Source
	Reseed(seed uint64)
}

func newPCG(seed uint64) seededSource { return random.New(seed) }

// worker is the private state of one pool goroutine.
type worker struct {
	id   int
	src  seededSource
	exec *executor
}

// ensemble executes Params.Runs protocol instances on the worker pool and
// returns one symbol slot per run. Run i reseeds its worker's stream from
// (base, i), so the slots do not depend on the pool size or on which
// worker claims which run. Slot i is written only by the task for run i;
// the slots are read only after the pool has joined.
func (e *Engine) ensemble(ctx context.Context, base uint64) ([][]Symbol, error) {
	n := e.g.NodeCount()
	slots := make([][]Symbol, e.p.Runs)

	newWorker := func(id int) *worker {
		src := e.newSource(random.Derive(base, -1-id))
		return &worker{id: id, src: src, exec: newExecutor(e.g, e.p, src)}
	}

	task := func(ctx context.Context, w *worker, i int) error {
		start := time.Now()
		w.src.Reseed(random.Derive(base, i))
		if err := w.exec.run(ctx); err != nil {
			e.recorder.RecordRun(runStatus(err), time.Since(start))
			return &RunError{Run: i, Cause: err}
		}

		slot := make([]Symbol, n)
		summarize(w.exec.history, n, e.p, slot)
		slots[i] = slot

		elapsed := time.Since(start)
		e.recorder.RecordRun(StatusOK, elapsed)
		e.logger.Debug("run complete", logging.Run(i), logging.Worker(w.id), logging.Latency(elapsed))
		return nil
	}

	pool, err := parallel.NewWorkerPool(e.p.Workers(), newWorker, task)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	e.recorder.SetActiveWorkers(min(pool.Workers(), e.p.Runs))
	defer e.recorder.SetActiveWorkers(0)

	if err := pool.Run(ctx, e.p.Runs); err != nil {
		if errors.Is(err, parallel.ErrWorkerPanic) {
			e.recorder.RecordRun(StatusFailed, 0)
			return nil, fmt.Errorf("%w: %w", ErrRunFailed, err)
		}
		return nil, err
	}
	return slots, nil
}

func runStatus(err error) string {
	if IsCancelled(err) {
		return StatusCancelled
	}
	return StatusFailed
}
