package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner executes a single task to completion. Jobs are triggered externally
// once per cycle, so there is no queue and no retry.
type Runner struct {
	timeout time.Duration
}

// NewRunner returns a runner bounding each task by timeout. Zero means no limit.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run executes task. A failure is returned, not logged, with the task's type,
// id and duration attached; the caller reports it once.
func (r *Runner) Run(ctx context.Context, task TaskInterface) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	task.Start()
	slog.Debug("Task started", "type", string(task.GetType()), "id", task.GetID())

	if err := task.Execute(ctx); err != nil {
		return fmt.Errorf("%s task %s failed after %s: %w", task.GetType(), task.GetID(), task.GetDuration(), err)
	}

	return nil
}
