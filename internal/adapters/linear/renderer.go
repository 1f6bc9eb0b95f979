// Package linear renders task lifecycle events as chronological, prefixed lines.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/lander/internal/ui/output"
	"go.trai.ch/lander/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. Lifecycle lines go to stderr, task
// output goes to stdout one complete line at a time.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	tasks map[string]*taskState
}

type taskState struct {
	name      string
	startTime time.Time
	pending   bytes.Buffer
}

// NewRenderer creates a Renderer styling its output for profile.
// Nil writers select the process streams.
func NewRenderer(stdout, stderr io.Writer, profile termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, profile),
		tasks:  make(map[string]*taskState),
	}
}

// Stop prints every partial line still buffered.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		r.flushLocked(task)
	}
	return nil
}

// OnPlanEmit prints the step tree about to run.
func (r *Renderer) OnPlanEmit(plan string, tasks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	arrow := r.output.String(style.Arrow).Foreground(r.output.Color(string(style.Accent))).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s (%d task(s))\n", arrow, plan, len(tasks))
}

// OnTaskStart prints a start line for the task.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[spanID] = &taskState{name: name, startTime: startTime}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTaskLog prints every complete line in data and keeps the remainder.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	task.pending.Write(data)
	for {
		idx := bytes.IndexByte(task.pending.Bytes(), '\n')
		if idx < 0 {
			return
		}
		line := task.pending.Next(idx + 1)
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes the task's output and prints its result.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)
	r.flushLocked(task)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", r.prefix(task.name), symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(r.output.Color(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", r.prefix(task.name), symbol, duration)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String("[" + name + "]").Faint().String()
}

// flushLocked must be called with r.mu held.
func (r *Renderer) flushLocked(task *taskState) {
	if task.pending.Len() == 0 {
		return
	}
	r.printLineLocked(task.name, task.pending.Bytes())
	task.pending.Reset()
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
