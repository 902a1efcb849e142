package tui

import (
	"fmt"
	"strings"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// StatusComponent displays the timer and the line it is bound to.
type StatusComponent struct {
	Status  timer.Status
	Line    *model.TimesheetView
	Width   int
	Spinner string
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(st timer.Status, line *model.TimesheetView, width int) *StatusComponent {
	return &StatusComponent{Status: st, Line: line, Width: width}
}

// IsActive reports whether a timesheet is bound to the timer.
func (sc *StatusComponent) IsActive() bool {
	return sc.Status.State == model.TimerRunning || sc.Status.State == model.TimerPaused
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	var content strings.Builder

	if sc.Status.State == model.TimerRunning && sc.Spinner != "" {
		content.WriteString(sc.Spinner + " ")
	}
	content.WriteString(timer.NewDisplay().Render(sc.Status))

	if sc.Line != nil {
		content.WriteString("\n\n")
		content.WriteString(FormatProjectTask(sc.Line.ProjectName, sc.Line.TaskName))
		if sc.Line.Name != "" {
			content.WriteString("\n")
			content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%q", sc.Line.Name)))
		}
	}

	box := StyleStatusBox
	switch sc.Status.State {
	case model.TimerRunning:
		box = StyleActiveStatusBox
	case model.TimerPaused:
		box = StylePausedStatusBox
	}
	if sc.Width > 4 {
		box = box.Width(sc.Width - 4)
	}
	return box.Render(content.String())
}

// LinesComponent lists today's timesheet lines with their total.
type LinesComponent struct {
	Lines    []*model.TimesheetView
	Width    int
	MaxLines int
	ActiveID int64
}

// NewLinesComponent creates a new lines component.
func NewLinesComponent(lines []*model.TimesheetView, width, maxLines int) *LinesComponent {
	return &LinesComponent{Lines: lines, Width: width, MaxLines: maxLines}
}

// Total returns the hours logged across all lines.
func (lc *LinesComponent) Total() float64 {
	var total float64
	for _, l := range lc.Lines {
		total += l.UnitAmount
	}
	return total
}

// View renders the lines component.
func (lc *LinesComponent) View() string {
	var content strings.Builder
	content.WriteString(StyleTitle.Render("Today"))

	if len(lc.Lines) == 0 {
		content.WriteString(StyleSubtitle.Render("No timesheet lines today"))
	}

	nameWidth := lc.Width/2 - 10
	for i, l := range lc.Lines {
		if lc.MaxLines > 0 && i >= lc.MaxLines {
			content.WriteString(StyleSubtitle.Render(fmt.Sprintf("… %d more", len(lc.Lines)-i)))
			break
		}
		marker := "  "
		if l.ID == lc.ActiveID {
			marker = "▸ "
		}
		content.WriteString(fmt.Sprintf("%s%s  %s  %s\n", marker,
			StyleDuration.Render(l.Duration),
			FormatProjectTask(l.ProjectName, l.TaskName),
			StyleSubtitle.Render(output.Truncate(l.Name, nameWidth))))
	}

	content.WriteString("\n")
	content.WriteString(StyleSubtitle.Render("Total: ") + StyleDuration.Render(timer.HoursToHHMM(lc.Total())))

	box := StyleLinesBox
	if lc.Width > 4 {
		box = box.Width(lc.Width - 4)
	}
	return box.Render(content.String())
}
