// Package linear renders task progress as chronological, prefixed log lines for CI and pipes.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/swig/internal/ui/output"
	"go.trai.ch/swig/internal/ui/style"
)

// Renderer implements ports.Renderer. Task output goes to stdout, lifecycle lines to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	tasks map[string]*taskState
}

type taskState struct {
	label     string
	startTime time.Time
	partial   bytes.Buffer
}

// NewRenderer creates a Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
		tasks:  make(map[string]*taskState),
	}
}

// Start does nothing; the renderer is synchronous.
func (r *Renderer) Start(context.Context) error {
	return nil
}

// Stop prints any partial lines still buffered.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		r.flushLocked(task)
	}
	return nil
}

// Wait does nothing; the renderer is synchronous.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned run.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.stderr, "%s running %s (%d task(s): %s)\n",
		r.output.String(style.Arrow).Foreground(termenv.ANSICyan),
		strings.Join(targets, ", "), len(tasks), strings.Join(tasks, ", "))
}

// OnTaskStart prints a start line. Tasks started inside another task are labelled parent/child.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := name
	if parent, ok := r.tasks[parentID]; ok {
		label = parent.label + "/" + name
	}
	r.tasks[spanID] = &taskState{label: label, startTime: startTime}
	_, _ = fmt.Fprintf(r.stderr, "%s starting\n", r.prefix(label))
}

// OnTaskLog prints complete lines of task output with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	task.partial.Write(data)
	for {
		idx := bytes.IndexByte(task.partial.Bytes(), '\n')
		if idx < 0 {
			return
		}
		line := task.partial.Next(idx + 1)
		r.printLineLocked(task.label, line)
	}
}

// OnTaskComplete prints the outcome and duration of a task.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	r.flushLocked(task)
	delete(r.tasks, spanID)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed)
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n", r.prefix(task.label), symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen)
	_, _ = fmt.Fprintf(r.stderr, "%s %s finished in %v\n", r.prefix(task.label), symbol, duration)
}

func (r *Renderer) prefix(label string) termenv.Style {
	return r.output.String("[" + label + "]").Faint()
}

// flushLocked must be called with r.mu held.
func (r *Renderer) flushLocked(task *taskState) {
	if task.partial.Len() > 0 {
		r.printLineLocked(task.label, task.partial.Bytes())
		task.partial.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(label string, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", label, line)
}
