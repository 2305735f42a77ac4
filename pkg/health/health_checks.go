package health

import (
	"context"
	"time"
)

// Progress is a snapshot of an experiment's ensemble counters.
type Progress struct {
	Done   int
	Failed int
	Total  int
}

// ProgressCheck reports how many ensembles have finished. Failed
// ensembles degrade the status; the experiment itself stays healthy.
func ProgressCheck(get func() Progress) CheckFunc {
	return func() Check {
		p := get()
		check := Check{
			Name: "experiment",
			Details: map[string]any{
				"done":   p.Done,
				"failed": p.Failed,
				"total":  p.Total,
			},
			Status: StatusHealthy,
		}

		switch {
		case p.Failed > 0:
			check.Status = StatusDegraded
			check.Message = "Some ensembles failed"
		case p.Total > 0 && p.Done >= p.Total:
			check.Message = "Experiment complete"
		default:
			check.Message = "Running"
		}
		return check
	}
}

// SinkCheck pings a report sink with the given timeout.
func SinkCheck(name string, ping func(context.Context) error, timeout time.Duration) CheckFunc {
	return func() Check {
		check := Check{Name: name}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}
		return check
	}
}

// MemoryCheck degrades when the heap uses more than 90% of the memory
// obtained from the OS.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		alloc, sys := getUsage()
		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
			Status:  StatusHealthy,
			Message: "Memory usage normal",
		}

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}
