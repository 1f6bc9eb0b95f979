package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Step is a node in a pipeline composition tree. It is one of SingleStep,
// SequenceStep or ParallelStep.
type Step interface {
	isStep()
	String() string
}

// SingleStep runs exactly one named task.
type SingleStep struct {
	Task string
}

// SequenceStep runs its children one after another. A hard error in a child
// stops the sequence.
type SequenceStep struct {
	Steps []Step
}

// ParallelStep runs its children concurrently and waits for all of them.
// A failing child never cancels its siblings.
type ParallelStep struct {
	Steps []Step
}

func (SingleStep) isStep()   {}
func (SequenceStep) isStep() {}
func (ParallelStep) isStep() {}

// Single returns a step that runs the named task.
func Single(task string) Step {
	return SingleStep{Task: task}
}

// Sequence returns a step that runs steps in order.
func Sequence(steps ...Step) Step {
	return SequenceStep{Steps: steps}
}

// Parallel returns a step that runs steps concurrently.
func Parallel(steps ...Step) Step {
	return ParallelStep{Steps: steps}
}

// String renders the single step as its task name.
func (s SingleStep) String() string {
	return s.Task
}

// String renders the sequence as series(a, b).
func (s SequenceStep) String() string {
	return "series(" + joinSteps(s.Steps) + ")"
}

// String renders the parallel group as parallel(a, b).
func (s ParallelStep) String() string {
	return "parallel(" + joinSteps(s.Steps) + ")"
}

func joinSteps(steps []Step) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ", ")
}

// Tasks yields the task names referenced by step in depth-first order.
// A task referenced twice is yielded twice.
func Tasks(step Step) iter.Seq[string] {
	return func(yield func(string) bool) {
		walkTasks(step, yield)
	}
}

func walkTasks(step Step, yield func(string) bool) bool {
	switch s := step.(type) {
	case SingleStep:
		return yield(s.Task)
	case SequenceStep:
		for _, child := range s.Steps {
			if !walkTasks(child, yield) {
				return false
			}
		}
	case ParallelStep:
		for _, child := range s.Steps {
			if !walkTasks(child, yield) {
				return false
			}
		}
	}
	return true
}

// ValidateStep checks that every composite step has children and every
// single step names a task for which exists returns true.
func ValidateStep(step Step, exists func(name string) bool) error {
	switch s := step.(type) {
	case SingleStep:
		if !exists(s.Task) {
			return zerr.With(ErrTaskNotFound, "task", s.Task)
		}
		return nil
	case SequenceStep:
		return validateChildren(s, s.Steps, exists)
	case ParallelStep:
		return validateChildren(s, s.Steps, exists)
	case nil:
		return ErrEmptyStep
	default:
		return ErrUnknownStep
	}
}

func validateChildren(parent Step, steps []Step, exists func(string) bool) error {
	if len(steps) == 0 {
		return zerr.With(ErrEmptyStep, "step", parent.String())
	}
	for _, child := range steps {
		if err := ValidateStep(child, exists); err != nil {
			return err
		}
	}
	return nil
}
