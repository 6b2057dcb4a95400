// Package render turns views into terminal text and export formats.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"lifeos/internal/aggregate"
)

var (
	Gold    = lipgloss.Color("#BF9B30")
	Dim     = lipgloss.Color("#6B7280")
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Gold).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(Dim)

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Gold)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Info)

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Gold)

	successStyle = lipgloss.NewStyle().Foreground(Success)
	warningStyle = lipgloss.NewStyle().Foreground(Warning)
	errorStyle   = lipgloss.NewStyle().Foreground(Error)
)

// trendStyle colours a score trend label.
func trendStyle(trend string) lipgloss.Style {
	switch trend {
	case aggregate.TrendImproving:
		return successStyle
	case aggregate.TrendStable:
		return warningStyle
	default:
		return errorStyle
	}
}
