// Package app implements the application layer for lander.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel"
	"go.trai.ch/lander/internal/adapters/assets"
	"go.trai.ch/lander/internal/adapters/detector"
	"go.trai.ch/lander/internal/adapters/devserver"
	"go.trai.ch/lander/internal/adapters/linear"
	"go.trai.ch/lander/internal/adapters/telemetry"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/lander/internal/engine/pipeline"
	"go.trai.ch/lander/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	resolver     ports.InputResolver
	writer       ports.FileWriter
	hasher       ports.Hasher
	watcher      ports.Watcher

	stdout  io.Writer
	stderr  io.Writer
	profile func() termenv.Profile
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	resolver ports.InputResolver,
	writer ports.FileWriter,
	hasher ports.Hasher,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		resolver:     resolver,
		writer:       writer,
		hasher:       hasher,
		watcher:      watcher,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		profile:      detector.DetectProfile,
	}
}

// WithOutput redirects task progress. This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithProfile fixes the color profile instead of detecting it.
func (a *App) WithProfile(p termenv.Profile) *App {
	a.profile = func() termenv.Profile { return p }
	return a
}

// Options configure a pipeline run.
type Options struct {
	// ConfigPath is the configuration file. Empty selects lander.yaml in
	// the working directory.
	ConfigPath string
	// Parallelism overrides the configured parallelism when positive.
	Parallelism int
	// Strict turns transform failures into hard failures.
	Strict bool
	// JSON switches the logger to JSON records.
	JSON bool
}

// Dev runs the develop pipeline. It returns nil once ctx is cancelled.
func (a *App) Dev(ctx context.Context, opts Options) error {
	cfg, err := a.load(opts)
	if err != nil {
		return err
	}

	deps := a.deps(cfg, domain.ModeDevelop)
	if err := a.preflight(deps); err != nil {
		return err
	}

	hub := devserver.NewHub(cfg.DestRoot())
	r, done := a.newRun(cfg, hub)
	defer done(ctx)

	rerun := func(ctx context.Context, step domain.Step) error {
		if err := r.machine.BeginRebuild(); err != nil {
			return err
		}
		defer func() { _ = r.machine.EndRebuild() }()
		return r.sched.Run(ctx, step)
	}

	server := devserver.NewServer(cfg.DestRoot(), cfg.Server, hub, a.logger)
	watch := pipeline.NewWatchTask(a.watcher, cfg.SrcRoot(), pipeline.WatchRules(cfg), rerun, a.logger)
	p := pipeline.Develop(deps, pipeline.NewServeTask(server), watch)

	if err := r.execute(ctx, p); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Build runs the production pipeline and prints the digest of the output tree.
func (a *App) Build(ctx context.Context, opts Options) error {
	cfg, err := a.load(opts)
	if err != nil {
		return err
	}

	deps := a.deps(cfg, domain.ModeProduction)
	if err := a.preflight(deps); err != nil {
		return err
	}

	r, done := a.newRun(cfg, nil)
	defer done(ctx)

	if err := r.execute(ctx, pipeline.Production(deps)); err != nil {
		return err
	}

	digest, err := a.hasher.HashTree(cfg.DestRoot())
	if err != nil {
		return zerr.Wrap(err, "failed to digest output tree")
	}
	_, _ = fmt.Fprintf(a.stdout, "built %s (digest %s)\n", relPath(cfg.Root, cfg.DestRoot()), digest)
	return nil
}

// Clean removes the output root.
func (a *App) Clean(ctx context.Context, opts Options) error {
	cfg, err := a.load(opts)
	if err != nil {
		return err
	}

	r, done := a.newRun(cfg, nil)
	defer done(ctx)

	if err := r.execute(ctx, pipeline.Clean(a.deps(cfg, domain.ModeProduction))); err != nil {
		return err
	}
	a.logger.Info("removed " + relPath(cfg.Root, cfg.DestRoot()))
	return nil
}

type jsonSwitch interface {
	SetJSON(enable bool)
}

func (a *App) load(opts Options) (*domain.Config, error) {
	if s, ok := a.logger.(jsonSwitch); ok && opts.JSON {
		s.SetJSON(true)
	}

	path := opts.ConfigPath
	if path == "" {
		path = domain.DefaultConfigFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve configuration path"), "path", path)
	}

	cfg, err := a.configLoader.Load(abs)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.Parallelism > 0 {
		cfg.Parallelism = opts.Parallelism
	}
	if opts.Strict {
		cfg.Strict = true
	}
	return cfg, nil
}

func (a *App) deps(cfg *domain.Config, mode domain.Mode) *assets.Deps {
	return &assets.Deps{
		Config:   cfg,
		Resolver: a.resolver,
		Writer:   a.writer,
		Executor: a.executor,
		Logger:   a.logger,
		Mode:     mode,
	}
}

// preflight checks that every tool the run needs can be started, before
// clean touches the output root.
func (a *App) preflight(deps *assets.Deps) error {
	locator, ok := a.executor.(ports.ToolLocator)
	if !ok {
		return nil
	}
	cmds, err := deps.RequiredTools()
	if err != nil {
		return errors.Join(domain.ErrInvalidConfig, err)
	}
	for _, cmd := range cmds {
		if _, err := locator.Locate(cmd); err != nil {
			return errors.Join(domain.ErrInvalidConfig, zerr.Wrap(err, cmd.Tool+" tool is not installed"))
		}
	}
	return nil
}

// run holds the per-invocation telemetry, scheduler and state.
type run struct {
	machine *domain.StateMachine
	sched   *scheduler.Scheduler
}

// newRun wires the renderer into OpenTelemetry and returns a scheduler
// reporting through it. The returned func flushes the renderer.
func (a *App) newRun(cfg *domain.Config, reloader ports.Reloader) (*run, func(context.Context)) {
	renderer := linear.NewRenderer(a.stdout, a.stderr, a.profile())

	// Spans reach the renderer through the bridge registered on the global provider.
	provider := telemetry.NewProvider(telemetry.NewBridge(renderer))
	otel.SetTracerProvider(provider)

	// Task output is streamed to the renderer through the batcher.
	tracer := telemetry.NewOTelTracer("lander").WithRenderer(renderer)

	r := &run{
		machine: domain.NewStateMachine(),
		sched: scheduler.NewScheduler(tracer, a.logger, scheduler.Options{
			Parallelism: cfg.Parallelism,
			Strict:      cfg.Strict,
			Reloader:    reloader,
		}),
	}
	return r, func(ctx context.Context) {
		_ = tracer.Shutdown(ctx)
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}
}

// execute runs the phases of p in order, moving the state machine along.
func (r *run) execute(ctx context.Context, p *pipeline.Pipeline) error {
	if err := r.sched.Register(p.Tasks...); err != nil {
		return err
	}

	for _, phase := range p.Phases {
		if err := r.machine.Transition(phase.State); err != nil {
			return err
		}
		if err := r.sched.Run(ctx, phase.Step); err != nil {
			_ = r.machine.Transition(domain.StateFailed)
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
	}

	if p.Final != "" {
		return r.machine.Transition(p.Final)
	}
	return nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
