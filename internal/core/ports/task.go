package ports

import (
	"context"
	"io"
)

// Task is a named unit of work the scheduler can run.
//
//go:generate mockgen -source=task.go -destination=mocks/mock_task.go -package=mocks
type Task interface {
	// Name returns the unique task name.
	Name() string
	// Run executes the task, writing diagnostics to log. It returns the
	// absolute paths of outputs whose bytes changed.
	Run(ctx context.Context, log io.Writer) ([]string, error)
}

// Reloader is notified about changed outputs.
type Reloader interface {
	// Notify announces that the given output files changed.
	Notify(paths []string)
}
