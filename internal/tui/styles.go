// Package tui provides the terminal user interface for watching the timer.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the TUI.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleProject is used for project names.
	StyleProject = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleTask is used for task names.
	StyleTask = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// StyleDuration is used for duration values.
	StyleDuration = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleSpinner = lipgloss.NewStyle().
			Foreground(ColorSuccess)
)

// Box styles for the timer and the lines panel.
var (
	StyleStatusBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)

	// StyleActiveStatusBox is used while the timer runs.
	StyleActiveStatusBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorSuccess).
				Padding(1, 2).
				MarginBottom(1)

	// StylePausedStatusBox is used while the timer is paused.
	StylePausedStatusBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(1, 2).
				MarginBottom(1)

	StyleLinesBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2).
			MarginBottom(1)
)

// ProgressBar creates a progress bar string.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", empty))
}

// FormatProjectTask formats "project / task" with styles.
func FormatProjectTask(project, task string) string {
	switch {
	case project == "" && task == "":
		return StyleSubtitle.Render("no project")
	case task == "":
		return StyleProject.Render(project)
	case project == "":
		return StyleTask.Render(task)
	}
	return StyleProject.Render(project) + " / " + StyleTask.Render(task)
}
