package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/lander/internal/adapters/fs"
	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultDebounceWindow is the quiet period after the last event of a burst
// before a rule reruns.
const DefaultDebounceWindow = 50 * time.Millisecond

// RerunFunc runs step in response to changed sources.
type RerunFunc func(ctx context.Context, step domain.Step) error

// Subscriptions routes watch events to the rules whose globs match them.
type Subscriptions struct {
	root   string
	rules  []domain.WatchRule
	rerun  RerunFunc
	logger ports.Logger
	window time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewSubscriptions creates subscriptions for rules. Rule globs are matched
// against event paths relative to root. A non-positive window selects
// DefaultDebounceWindow.
func NewSubscriptions(root string, rules []domain.WatchRule, rerun RerunFunc, logger ports.Logger, window time.Duration) *Subscriptions {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Subscriptions{
		root:   root,
		rules:  rules,
		rerun:  rerun,
		logger: logger,
		window: window,
	}
}

// Match returns the indexes of the rules matching path.
func (s *Subscriptions) Match(path string) []int {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return nil
	}
	rel = filepath.ToSlash(rel)

	var matched []int
	for i, rule := range s.rules {
		if fs.Match(rule.Globs, rel) {
			matched = append(matched, i)
		}
	}
	return matched
}

// Serve consumes events from w until its stream ends, then waits for reruns
// in progress. A rerun is never cancelled by a later one, so reruns of the
// same rule may overlap. Rerun failures are logged and watching continues.
func (s *Subscriptions) Serve(ctx context.Context, w ports.Watcher) error {
	debouncers := make([]*Debouncer, len(s.rules))
	for i, rule := range s.rules {
		debouncers[i] = NewDebouncer(s.window, func(paths []string) {
			s.spawn(ctx, rule, paths)
		})
	}

	for event := range w.Events() {
		for _, i := range s.Match(event.Path) {
			debouncers[i].Add(event.Path)
		}
	}

	for _, d := range debouncers {
		d.Stop()
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.inflight.Wait()
	return nil
}

func (s *Subscriptions) spawn(ctx context.Context, rule domain.WatchRule, paths []string) {
	s.mu.Lock()
	if s.closed || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		s.logger.Info(fmt.Sprintf("%s changed: %s", rule.Name, s.describe(paths)))
		if err := s.rerun(ctx, rule.Step); err != nil {
			s.logger.Error(zerr.With(zerr.Wrap(err, "rerun failed"), "rule", rule.Name))
		}
	}()
}

func (s *Subscriptions) describe(paths []string) string {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(s.root, p); err == nil {
			p = filepath.ToSlash(rel)
		}
		rels = append(rels, p)
	}
	return strings.Join(rels, ", ")
}
