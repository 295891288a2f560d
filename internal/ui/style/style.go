// Package style holds the colors and glyphs shared by the logger and the renderers.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#0EA5E9")
	Muted  = lipgloss.Color("#6B7280")
	Text   = lipgloss.Color("#F9FAFB")
	Green  = lipgloss.Color("#16A34A")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#D97706")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
	Circle  = "○"
	Reload  = "↻"
)

// Lipgloss styles used by the interactive renderer.
var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Faint   = lipgloss.NewStyle().Foreground(Muted)
	Success = lipgloss.NewStyle().Foreground(Green)
	Failure = lipgloss.NewStyle().Foreground(Red)
	Running = lipgloss.NewStyle().Foreground(Yellow)
)
