package lifecycle

import (
	"context"
	"time"
)

// Worker invokes the manager's expiry sweep on a fixed interval. The host
// process owns the schedule and the goroutine; the manager stays timer-free.
type Worker struct {
	manager  *Manager
	interval time.Duration
}

func NewWorker(manager *Manager, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Worker{manager: manager, interval: interval}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.manager.Sweep(time.Now())
		}
	}
}
