// Package filter narrows task and activity lists by date window, assignee and
// free-text search while keeping parent and child tasks visible together.
package filter

import (
	"time"
)

// Day strips the time of day from t in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Window is an inclusive range of days.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether day d falls in the window.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(w.From) && !d.After(w.To)
}

// Overlaps reports whether any day of the window falls inside [start, end].
// A nil bound is open.
func (w Window) Overlaps(start, end *time.Time) bool {
	if start != nil && Day(*start).After(w.To) {
		return false
	}
	if end != nil && Day(*end).Before(w.From) {
		return false
	}
	return true
}

// TodayWindow is the single day today.
func TodayWindow(today time.Time) Window {
	today = Day(today)
	return Window{From: today, To: today}
}

// WeekWindow is the week containing today, starting on weekStart.
func WeekWindow(today time.Time, weekStart time.Weekday) Window {
	today = Day(today)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	from := today.AddDate(0, 0, -offset)
	return Window{From: from, To: from.AddDate(0, 0, 6)}
}

// NextWeekWindow is the week after the one containing today.
func NextWeekWindow(today time.Time, weekStart time.Weekday) Window {
	w := WeekWindow(today, weekStart)
	return Window{From: w.From.AddDate(0, 0, 7), To: w.To.AddDate(0, 0, 7)}
}

// MonthWindow is the calendar month containing today.
func MonthWindow(today time.Time) Window {
	today = Day(today)
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return Window{From: from, To: from.AddDate(0, 1, -1)}
}
