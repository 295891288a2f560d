package ports

import (
	"context"
	"time"
)

// Renderer presents task progress. The same span events drive either the interactive
// view or plain linear logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start begins the renderer lifecycle. Interactive renderers run in the background.
	Start(ctx context.Context) error

	// Stop stops accepting events and flushes buffered output.
	Stop() error

	// Wait blocks until the renderer has terminated.
	Wait() error

	// OnPlanEmit receives the planned tasks in execution order, their dependencies
	// and the requested targets.
	OnPlanEmit(tasks []string, deps map[string][]string, targets []string)

	// OnTaskStart is called when a task span starts. parentID is empty for top-level tasks.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog receives raw output written to a task span.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task span ends. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
