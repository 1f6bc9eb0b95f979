package domain

import (
	"sync"

	"go.trai.ch/zerr"
)

// PipelineState is a phase of a pipeline run.
type PipelineState string

// Pipeline states.
const (
	StateIdle           PipelineState = "idle"
	StateCleaning       PipelineState = "cleaning"
	StateBuilding       PipelineState = "building"
	StateServing        PipelineState = "serving"
	StateWatching       PipelineState = "watching"
	StateRebuilding     PipelineState = "rebuilding"
	StatePostprocessing PipelineState = "postprocessing"
	StateDone           PipelineState = "done"
	StateFailed         PipelineState = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s PipelineState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

func isAllowedTransition(from, to PipelineState) bool {
	if to == StateFailed {
		return !from.IsTerminal() && from != StateIdle
	}
	switch from {
	case StateIdle:
		return to == StateCleaning
	case StateCleaning:
		return to == StateBuilding || to == StateDone
	case StateBuilding:
		return to == StateServing || to == StatePostprocessing || to == StateDone
	case StateServing:
		return to == StateWatching
	case StateWatching:
		return to == StateRebuilding
	case StateRebuilding:
		return to == StateWatching
	case StatePostprocessing:
		return to == StateDone
	default:
		return false
	}
}

// StateMachine tracks the state of one pipeline run. It is safe for
// concurrent use.
type StateMachine struct {
	mu       sync.Mutex
	state    PipelineState
	history  []PipelineState
	rebuilds int
}

// NewStateMachine returns a machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		state:   StateIdle,
		history: []PipelineState{StateIdle},
	}
}

// State returns the current state.
func (m *StateMachine) State() PipelineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns every state the machine has entered, in order.
func (m *StateMachine) History() []PipelineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PipelineState, len(m.history))
	copy(out, m.history)
	return out
}

// Transition moves the machine to the given state.
func (m *StateMachine) Transition(to PipelineState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

func (m *StateMachine) transitionLocked(to PipelineState) error {
	if !isAllowedTransition(m.state, to) {
		return zerr.With(zerr.With(ErrInvalidTransition, "from", string(m.state)), "to", string(to))
	}
	m.state = to
	m.history = append(m.history, to)
	return nil
}

// BeginRebuild enters StateRebuilding. Overlapping rebuilds share the state;
// only the first one transitions.
func (m *StateMachine) BeginRebuild() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	if m.rebuilds > 1 {
		return nil
	}
	if err := m.transitionLocked(StateRebuilding); err != nil {
		m.rebuilds--
		return err
	}
	return nil
}

// EndRebuild leaves StateRebuilding once the last overlapping rebuild finishes.
func (m *StateMachine) EndRebuild() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rebuilds == 0 {
		return zerr.With(ErrInvalidTransition, "reason", "no rebuild in progress")
	}
	m.rebuilds--
	if m.rebuilds > 0 {
		return nil
	}
	return m.transitionLocked(StateWatching)
}
