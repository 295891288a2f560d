package tui

import "time"

// MsgInitTasks resets the task list to the planned run.
type MsgInitTasks struct {
	Tasks        []string
	Dependencies map[string][]string
	Targets      []string
}

// MsgTaskStart marks a task span as started.
type MsgTaskStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgTaskLog carries a chunk of task output.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgTaskComplete marks a task span as finished.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
