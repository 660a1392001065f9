// Package report renders engine results for the terminal.
package report

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	valueStyle = lipgloss.NewStyle().
			Foreground(Text)

	goodStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	barFilled = lipgloss.NewStyle().Background(Secondary)
	barEmpty  = lipgloss.NewStyle().Background(Border)
)

// severityStyle colors low/medium/high labels.
func severityStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return badStyle
	case "medium":
		return warnStyle
	default:
		return goodStyle
	}
}
