package ports

import "time"

// Renderer presents task lifecycle events.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Stop flushes any buffered output.
	Stop() error
	// OnPlanEmit is called before a step tree runs, with the tasks it references.
	OnPlanEmit(plan string, tasks []string)
	// OnTaskStart is called when a task begins execution.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)
	// OnTaskLog is called when a task emits output. data may hold partial lines.
	OnTaskLog(spanID string, data []byte)
	// OnTaskComplete is called when a task finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
