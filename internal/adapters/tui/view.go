package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/swig/internal/ui/style"
)

var (
	listStyle = lipgloss.NewStyle().PaddingRight(2)
	logStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Muted).
			PaddingLeft(1)
	selectedStyle = lipgloss.NewStyle().Foreground(style.Accent).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ListHeight <= 0 {
		return "Initializing..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.taskList(), m.logPane())
}

func (m *Model) taskList() string {
	var s strings.Builder
	s.WriteString(style.Title.Render("TASKS") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Tasks))
	for i := min(m.ListOffset, end); i < end; i++ {
		s.WriteString(m.row(i, m.Tasks[i]) + "\n")
	}
	return listStyle.Render(s.String())
}

func (m *Model) row(index int, task *TaskNode) string {
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
	}
	content := icon(task) + " " + task.Name
	if task.Runs > 1 {
		content += fmt.Sprintf(" %s%d", style.Reload, task.Runs)
	}
	if task.Status == StatusDone || task.Status == StatusError {
		content += " " + style.Faint.Render(task.Duration.Round(time.Millisecond).String())
	}
	return cursor + statusStyle(task.Status).Render(content)
}

func icon(task *TaskNode) string {
	switch task.Status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return style.Circle
	}
}

func statusStyle(status TaskStatus) lipgloss.Style {
	switch status {
	case StatusRunning:
		return style.Running
	case StatusDone:
		return style.Success
	case StatusError:
		return style.Failure
	default:
		return style.Faint
	}
}

func (m *Model) logPane() string {
	node := m.Selected()
	if node == nil {
		return logStyle.Render(style.Title.Render("LOGS (waiting)"))
	}

	mode := "following"
	if !m.FollowMode {
		mode = "manual"
	}
	header := style.Title.Render(fmt.Sprintf("LOGS: %s (%s)", node.Name, mode))

	lines := node.Lines()
	if m.LogHeight > 0 && len(lines) > m.LogHeight {
		lines = lines[len(lines)-m.LogHeight:]
	}
	body := strings.Join(lines, "\n")
	if node.Err != nil {
		body += "\n" + style.Failure.Render(node.Err.Error())
	}
	return logStyle.Width(max(m.LogWidth, 0)).Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}
