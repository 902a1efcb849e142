package timer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/timesheets-app/timesheets/internal/model"
)

// Styles for the timer display.
var (
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")) // Purple

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")) // Green

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")) // Yellow

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")) // Gray

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6B7280")) // Gray
)

// Display renders a timer status for the terminal.
type Display struct {
	UseColor bool
	ShowHint bool
}

// NewDisplay creates a display with color enabled.
func NewDisplay() *Display {
	return &Display{UseColor: true}
}

func (d *Display) paint(style lipgloss.Style, s string) string {
	if d.UseColor {
		return style.Render(s)
	}
	return s
}

// Render renders the timer state, elapsed clock and key hints.
func (d *Display) Render(st Status) string {
	var b strings.Builder

	switch st.State {
	case model.TimerRunning:
		b.WriteString(d.paint(runningStyle, "RUNNING"))
	case model.TimerPaused:
		b.WriteString(d.paint(pausedStyle, "PAUSED"))
	default:
		b.WriteString(d.paint(labelStyle, "IDLE"))
	}
	if st.TimesheetID != 0 {
		label := st.Label
		if label == "" {
			label = "timesheet"
		}
		b.WriteString(d.paint(labelStyle, fmt.Sprintf(" %s #%d", label, st.TimesheetID)))
	}
	b.WriteString("\n\n")

	b.WriteString(d.paint(clockStyle, st.ElapsedText))
	if st.TimesheetID != 0 {
		b.WriteString(d.paint(labelStyle, fmt.Sprintf("  (%s h)", HoursToHHMM(st.Hours))))
	}

	if d.ShowHint {
		b.WriteString("\n\n")
		var hint string
		switch st.State {
		case model.TimerRunning:
			hint = "Press SPACE to pause, S to stop, Q to quit"
		case model.TimerPaused:
			hint = "[PAUSED] Press SPACE to resume, S to stop, Q to quit"
		default:
			hint = "Press Q to quit"
		}
		b.WriteString(d.paint(hintStyle, hint))
	}
	return b.String()
}
