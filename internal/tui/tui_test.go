package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// fakeTimer is an in-memory Controller.
type fakeTimer struct {
	state model.TimerStatus
	id    int64
	calls []string
	fail  error
}

func (f *fakeTimer) status(msg string) timer.Status {
	if f.fail != nil {
		return timer.Status{Result: model.Fail(f.fail), State: model.TimerIdle}
	}
	st := timer.Status{Result: model.OK(msg), State: f.state, ElapsedText: "00:05:00"}
	if f.state != model.TimerIdle {
		st.TimesheetID = f.id
	}
	return st
}

func (f *fakeTimer) Status(context.Context) timer.Status {
	f.calls = append(f.calls, "status")
	return f.status("")
}

func (f *fakeTimer) Pause(context.Context) timer.Status {
	f.calls = append(f.calls, "pause")
	f.state = model.TimerPaused
	return f.status("Timer paused")
}

func (f *fakeTimer) Resume(context.Context) timer.Status {
	f.calls = append(f.calls, "resume")
	f.state = model.TimerRunning
	return f.status("Timer resumed")
}

func (f *fakeTimer) Stop(context.Context) timer.Status {
	f.calls = append(f.calls, "stop")
	f.state = model.TimerIdle
	return f.status("Timer stopped")
}

var fixedNow = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

func line(id int64, name string, hours float64) *model.TimesheetView {
	return &model.TimesheetView{
		TimesheetEntry: &model.TimesheetEntry{Syncable: model.Syncable{ID: id}, Name: name, UnitAmount: hours},
		ProjectName:    "Website",
		TaskName:       "Design",
		Duration:       timer.HoursToHHMM(hours),
	}
}

func newTestWatch(ft *fakeTimer, lines []*model.TimesheetView) *WatchModel {
	m := NewWatchModel(context.Background(), WatchConfig{
		Timer: ft,
		Lines: func(context.Context) ([]*model.TimesheetView, error) { return lines, nil },
		Now:   func() time.Time { return fixedNow },
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(refreshMsg{})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBarWidth(t *testing.T) {
	bar10 := ProgressBar(50, 10)
	bar20 := ProgressBar(50, 20)

	assert.NotEmpty(t, bar10)
	assert.Greater(t, len(bar20), len(bar10))
}

func TestFormatProjectTask(t *testing.T) {
	assert.Contains(t, FormatProjectTask("Website", ""), "Website")
	assert.NotContains(t, FormatProjectTask("Website", ""), "/")

	both := FormatProjectTask("Website", "Design")
	assert.Contains(t, both, "Website")
	assert.Contains(t, both, "Design")
	assert.Contains(t, both, "/")

	assert.Contains(t, FormatProjectTask("", ""), "no project")
}

// =============================================================================
// Component Tests
// =============================================================================

func TestStatusComponentIdle(t *testing.T) {
	sc := NewStatusComponent(timer.Status{State: model.TimerIdle, ElapsedText: "00:00:00"}, nil, 80)
	assert.False(t, sc.IsActive())
	assert.Contains(t, sc.View(), "IDLE")
}

func TestStatusComponentRunning(t *testing.T) {
	st := timer.Status{State: model.TimerRunning, TimesheetID: 4, ElapsedText: "01:02:03", Hours: 1.03}
	sc := NewStatusComponent(st, line(4, "Homepage mockups", 1), 80)

	view := sc.View()
	assert.True(t, sc.IsActive())
	assert.Contains(t, view, "RUNNING")
	assert.Contains(t, view, "01:02:03")
	assert.Contains(t, view, "Website")
	assert.Contains(t, view, "Homepage mockups")
}

func TestLinesComponent(t *testing.T) {
	lc := NewLinesComponent([]*model.TimesheetView{line(1, "a", 1.5), line(2, "b", 0.5)}, 80, 5)
	assert.InDelta(t, 2.0, lc.Total(), 1e-9)

	view := lc.View()
	assert.Contains(t, view, "Today")
	assert.Contains(t, view, "02:00")
}

func TestLinesComponentLimit(t *testing.T) {
	lines := []*model.TimesheetView{line(1, "a", 1), line(2, "b", 1), line(3, "c", 1)}
	view := NewLinesComponent(lines, 80, 2).View()
	assert.Contains(t, view, "1 more")
}

func TestLinesComponentEmpty(t *testing.T) {
	view := NewLinesComponent(nil, 80, 5).View()
	assert.Contains(t, view, "No timesheet lines today")
}

// =============================================================================
// WatchModel Tests
// =============================================================================

func TestWatchModelLoadingBeforeResize(t *testing.T) {
	m := NewWatchModel(context.Background(), WatchConfig{Timer: &fakeTimer{state: model.TimerIdle}})
	assert.Equal(t, "Loading...", m.View())
	assert.NotNil(t, m.Init())
}

func TestWatchModelDefaults(t *testing.T) {
	m := NewWatchModel(context.Background(), WatchConfig{Timer: &fakeTimer{}})
	assert.Equal(t, time.Second, m.tickInterval)
	assert.Equal(t, 8, m.maxLines)
}

func TestWatchModelSpacePausesAndResumes(t *testing.T) {
	ft := &fakeTimer{state: model.TimerRunning, id: 4}
	m := newTestWatch(ft, nil)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, model.TimerPaused, m.status.State)
	assert.Equal(t, "Timer paused", m.message)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, model.TimerRunning, m.status.State)
	assert.Contains(t, ft.calls, "pause")
	assert.Contains(t, ft.calls, "resume")
}

func TestWatchModelSpaceWhenIdle(t *testing.T) {
	ft := &fakeTimer{state: model.TimerIdle}
	m := newTestWatch(ft, nil)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Contains(t, m.message, "No active timer")
	assert.NotContains(t, ft.calls, "pause")
}

func TestWatchModelStop(t *testing.T) {
	ft := &fakeTimer{state: model.TimerRunning, id: 4}
	m := newTestWatch(ft, []*model.TimesheetView{line(4, "x", 1)})

	m.Update(keyRunes("s"))
	assert.Equal(t, model.TimerIdle, m.status.State)
	assert.Contains(t, ft.calls, "stop")
}

func TestWatchModelQuit(t *testing.T) {
	m := newTestWatch(&fakeTimer{state: model.TimerIdle}, nil)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatchModelTickReloadsStatus(t *testing.T) {
	ft := &fakeTimer{state: model.TimerIdle}
	m := newTestWatch(ft, nil)

	ft.state = model.TimerRunning
	ft.id = 9
	_, cmd := m.Update(tickMsg(fixedNow))
	assert.NotNil(t, cmd)
	assert.Equal(t, model.TimerRunning, m.status.State)
	assert.Equal(t, int64(9), m.status.TimesheetID)
}

func TestWatchModelViewShowsActiveLine(t *testing.T) {
	ft := &fakeTimer{state: model.TimerRunning, id: 2}
	m := newTestWatch(ft, []*model.TimesheetView{line(1, "first", 1), line(2, "Homepage", 0.5)})

	view := m.View()
	assert.Contains(t, view, "Timesheet Timer")
	assert.Contains(t, view, "Homepage")
	assert.Contains(t, view, "▸")
	assert.Contains(t, view, "pause/resume")
}

func TestWatchModelShowsErrors(t *testing.T) {
	ft := &fakeTimer{fail: errors.New("state store closed")}
	m := newTestWatch(ft, nil)

	assert.Contains(t, m.View(), "state store closed")
}
