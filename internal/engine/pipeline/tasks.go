package pipeline

import (
	"context"
	"io"
	"time"

	"go.trai.ch/lander/internal/adapters/watcher"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
)

// Starter is a long-lived service that returns once it is ready.
type Starter interface {
	Start(ctx context.Context) error
}

// ServeTask starts the development server.
type ServeTask struct {
	server Starter
}

// NewServeTask creates the serve task.
func NewServeTask(server Starter) *ServeTask {
	return &ServeTask{server: server}
}

// Name returns "serve".
func (*ServeTask) Name() string { return "serve" }

// Run returns once the server listens. The server stops with ctx.
func (s *ServeTask) Run(ctx context.Context, _ io.Writer) ([]string, error) {
	return nil, s.server.Start(ctx)
}

// WatchTask watches the source root and reruns steps on change.
type WatchTask struct {
	watcher ports.Watcher
	root    string
	rules   []domain.WatchRule
	rerun   watcher.RerunFunc
	logger  ports.Logger
	window  time.Duration
}

// NewWatchTask creates the watch task. rerun runs the step of a matched rule.
func NewWatchTask(
	w ports.Watcher,
	root string,
	rules []domain.WatchRule,
	rerun watcher.RerunFunc,
	logger ports.Logger,
) *WatchTask {
	return &WatchTask{
		watcher: w,
		root:    root,
		rules:   rules,
		rerun:   rerun,
		logger:  logger,
		window:  watcher.DefaultDebounceWindow,
	}
}

// Name returns "watch".
func (*WatchTask) Name() string { return "watch" }

// Run blocks until ctx is done and every rerun in progress has finished.
func (t *WatchTask) Run(ctx context.Context, log io.Writer) ([]string, error) {
	if err := t.watcher.Start(ctx, t.root); err != nil {
		return nil, err
	}
	defer func() { _ = t.watcher.Stop() }()

	_, _ = io.WriteString(log, "watching "+t.root+"\n")
	subs := watcher.NewSubscriptions(t.root, t.rules, t.rerun, t.logger, t.window)
	return nil, subs.Serve(ctx, t.watcher)
}
