package domain

import "time"

// Task represents a unit of work in the build system.
// It uses InternedString for fields that are frequently repeated to save memory.
// A task without pipelines, watch rule or serve spec is structural: it only groups its dependencies.
type Task struct {
	Name         InternedString
	Description  string
	Dependencies []InternedString
	// Then lists tasks started as a fresh invocation once this task's action completed.
	Then      []InternedString
	Pipelines []Pipeline
	Watch     *WatchRule
	Serve     *ServeSpec
}

// IsStructural reports whether the task has no action of its own.
func (t *Task) IsStructural() bool {
	return len(t.Pipelines) == 0 && t.Watch == nil && t.Serve == nil
}

// IsService reports whether the task starts a long-running service.
func (t *Task) IsService() bool {
	return t.Watch != nil || t.Serve != nil
}

// WatchRule maps a set of glob patterns to a re-run action.
type WatchRule struct {
	Patterns []string
	Run      []InternedString
	Debounce time.Duration
}

// ServeSpec describes a static development server.
type ServeSpec struct {
	Root       string
	Port       int
	LiveReload bool
}

// DefaultServePort is used when a serve spec does not declare a port.
const DefaultServePort = 8080
