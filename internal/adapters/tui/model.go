// Package tui renders task progress as an interactive Bubble Tea program.
package tui

import (
	"bytes"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	taskListWidthRatio = 0.3
	logPaneBorderWidth = 4
	maxLogLines        = 1000
)

// TaskStatus is the display state of a task.
type TaskStatus string

const (
	// StatusPending means the task has not started.
	StatusPending TaskStatus = "Pending"
	// StatusRunning means the task is executing.
	StatusRunning TaskStatus = "Running"
	// StatusDone means the last run succeeded.
	StatusDone TaskStatus = "Done"
	// StatusError means the last run failed.
	StatusError TaskStatus = "Error"
)

// TaskNode is one row of the task list.
type TaskNode struct {
	Name     string
	Status   TaskStatus
	Runs     int
	Duration time.Duration
	Err      error

	started time.Time
	lines   []string
	partial bytes.Buffer
}

// Lines returns the buffered output, including an unterminated last line.
func (n *TaskNode) Lines() []string {
	if n.partial.Len() == 0 {
		return n.lines
	}
	return append(append([]string(nil), n.lines...), n.partial.String())
}

func (n *TaskNode) write(data []byte) {
	n.partial.Write(data)
	for {
		idx := bytes.IndexByte(n.partial.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(n.partial.Next(idx+1), "\r\n"))
		n.lines = append(n.lines, line)
	}
	if over := len(n.lines) - maxLogLines; over > 0 {
		n.lines = n.lines[over:]
	}
}

// Model is the Bubble Tea model of a run.
type Model struct {
	Tasks       []*TaskNode
	TaskMap     map[string]*TaskNode
	SpanMap     map[string]*TaskNode
	Targets     []string
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	LogWidth    int
	LogHeight   int
	FollowMode  bool
}

// NewModel creates an empty model that follows running tasks.
func NewModel() Model {
	return Model{
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		FollowMode: true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * taskListWidthRatio)
		m.LogWidth = msg.Width - listWidth - logPaneBorderWidth
		m.LogHeight = msg.Height - 2
		m.ListHeight = msg.Height - 2
		m.ensureVisible()

	case MsgInitTasks:
		m.Targets = msg.Targets
		m.Tasks = make([]*TaskNode, 0, len(msg.Tasks))
		m.TaskMap = make(map[string]*TaskNode, len(msg.Tasks))
		m.SpanMap = make(map[string]*TaskNode)
		for _, name := range msg.Tasks {
			m.addTask(name)
		}

	case MsgTaskStart:
		node, ok := m.TaskMap[msg.Name]
		if !ok {
			// Watch rebuilds and chained runs start tasks outside the plan.
			node = m.addTask(msg.Name)
		}
		node.Status = StatusRunning
		node.Runs++
		node.Err = nil
		node.started = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectTask(node)
		}

	case MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.write(msg.Data)
		}

	case MsgTaskComplete:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			delete(m.SpanMap, msg.SpanID)
			node.Duration = msg.EndTime.Sub(node.started)
			node.Err = msg.Err
			if msg.Err != nil {
				node.Status = StatusError
			} else {
				node.Status = StatusDone
			}
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
			m.FollowMode = false
		}
	case "esc":
		m.FollowMode = true
		for i, t := range m.Tasks {
			if t.Status == StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
	}
	m.ensureVisible()
	return nil
}

func (m *Model) addTask(name string) *TaskNode {
	node := &TaskNode{Name: name, Status: StatusPending}
	m.Tasks = append(m.Tasks, node)
	m.TaskMap[name] = node
	return node
}

func (m *Model) selectTask(node *TaskNode) {
	for i, t := range m.Tasks {
		if t == node {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

// Selected returns the highlighted task, or nil for an empty list.
func (m *Model) Selected() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}
