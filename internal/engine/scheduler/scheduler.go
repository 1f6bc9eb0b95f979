// Package scheduler interprets step trees over registered tasks.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Options configure a Scheduler.
type Options struct {
	// Parallelism bounds the children of one parallel step running at once.
	// Zero selects runtime.NumCPU().
	Parallelism int
	// Strict turns transform failures into hard failures.
	Strict bool
	// Reloader, if set, is notified of the outputs each task changed.
	Reloader ports.Reloader
}

// Scheduler runs step trees. Run is safe for concurrent use, so watch
// reruns may overlap with each other.
type Scheduler struct {
	tracer ports.Tracer
	logger ports.Logger
	opts   Options

	mu         sync.RWMutex
	tasks      map[string]ports.Task
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a Scheduler with no registered tasks.
func NewScheduler(tracer ports.Tracer, logger ports.Logger, opts Options) *Scheduler {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	return &Scheduler{
		tracer:     tracer,
		logger:     logger,
		opts:       opts,
		tasks:      make(map[string]ports.Task),
		taskStatus: make(map[string]TaskStatus),
	}
}

// Register adds tasks. Names must be unique.
func (s *Scheduler) Register(tasks ...ports.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		name := task.Name()
		if _, exists := s.tasks[name]; exists {
			return zerr.With(domain.ErrTaskAlreadyExists, "task", name)
		}
		s.tasks[name] = task
	}
	return nil
}

// Has reports whether a task is registered under name.
func (s *Scheduler) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tasks[name]
	return ok
}

// Status returns the last recorded status of a task.
func (s *Scheduler) Status(name string) (TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.taskStatus[name]
	return status, ok
}

// Run validates step, announces it and runs it. Soft task failures are
// logged and do not fail the run unless the scheduler is strict.
func (s *Scheduler) Run(ctx context.Context, step domain.Step) error {
	if err := domain.ValidateStep(step, s.Has); err != nil {
		return err
	}

	names := slices.Collect(domain.Tasks(step))
	s.initTaskStatuses(names)
	s.tracer.EmitPlan(ctx, step.String(), names)

	return s.run(ctx, step)
}

func (s *Scheduler) initTaskStatuses(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.taskStatus[name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

func (s *Scheduler) lookup(name string) ports.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[name]
}

func (s *Scheduler) run(ctx context.Context, step domain.Step) error {
	switch st := step.(type) {
	case domain.SingleStep:
		return s.runTask(ctx, st.Task)
	case domain.SequenceStep:
		return s.runSequence(ctx, st.Steps)
	case domain.ParallelStep:
		return s.runParallel(ctx, st.Steps)
	default:
		return zerr.With(domain.ErrUnknownStep, "step", step.String())
	}
}

// runSequence stops at the first hard failure.
func (s *Scheduler) runSequence(ctx context.Context, steps []domain.Step) error {
	for _, child := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.run(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// runParallel runs every child to completion. A failing child never
// cancels its siblings; all failures are joined.
func (s *Scheduler) runParallel(ctx context.Context, steps []domain.Step) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(s.opts.Parallelism)
	for _, child := range steps {
		g.Go(func() error {
			if err := s.run(ctx, child); err != nil {
				mu.Lock()
				errs = errors.Join(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (s *Scheduler) runTask(ctx context.Context, name string) error {
	task := s.lookup(name)
	if task == nil {
		return zerr.With(domain.ErrTaskNotFound, "task", name)
	}

	s.updateStatus(name, StatusRunning)
	ctx, span := s.tracer.Start(ctx, name, ports.WithSpanAttribute("task", name))
	changed, err := task.Run(ctx, span)
	span.SetAttribute("changed", len(changed))

	if len(changed) > 0 && s.opts.Reloader != nil {
		s.opts.Reloader.Notify(changed)
	}

	if err == nil {
		span.End()
		s.updateStatus(name, StatusCompleted)
		return nil
	}

	span.RecordError(err)
	span.End()
	s.updateStatus(name, StatusFailed)

	if errors.Is(err, domain.ErrTransformFailed) && !s.opts.Strict {
		s.logger.Error(zerr.With(zerr.Wrap(err, name+" failed, keeping previous output"), "task", name))
		return nil
	}
	return zerr.With(zerr.Wrap(err, domain.ErrTaskExecutionFailed.Error()), "task", name)
}
