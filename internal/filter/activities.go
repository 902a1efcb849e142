package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

// ActivityKind is an activity due-date filter.
type ActivityKind string

const (
	ActivityAll     ActivityKind = "all"
	ActivityToday   ActivityKind = "today"
	ActivityWeek    ActivityKind = "week"
	ActivityMonth   ActivityKind = "month"
	ActivityLater   ActivityKind = "later"
	ActivityOverdue ActivityKind = "overdue"
	ActivityDone    ActivityKind = "done"
)

// ActivityKinds lists the activity filters in display order.
var ActivityKinds = []ActivityKind{ActivityAll, ActivityToday, ActivityWeek, ActivityMonth, ActivityLater, ActivityOverdue, ActivityDone}

// ParseActivityKind parses an activity filter name. Empty means all.
func ParseActivityKind(s string) (ActivityKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ActivityAll, nil
	}
	for _, k := range ActivityKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidFilter, s)
}

// ActivityOptions controls Activities.
type ActivityOptions struct {
	Kind      ActivityKind
	Search    string
	Now       time.Time
	WeekStart time.Weekday
}

// ActivityMatchesDate applies a due-date filter. "today" includes overdue
// activities; "week", "month" and "later" exclude them. Activities without a
// due date only pass "all".
func ActivityMatchesDate(a *model.ActivityView, kind ActivityKind, today time.Time, weekStart time.Weekday) bool {
	if kind == ActivityAll || kind == ActivityDone {
		return true
	}
	if a.DueDate == nil {
		return false
	}
	today = Day(today)
	due := Day(*a.DueDate)
	overdue := due.Before(today)

	switch kind {
	case ActivityToday:
		return !due.After(today)
	case ActivityWeek:
		return WeekWindow(today, weekStart).Contains(due) && !overdue
	case ActivityMonth:
		return MonthWindow(today).Contains(due) && !overdue
	case ActivityLater:
		return due.After(MonthWindow(today).To)
	case ActivityOverdue:
		return overdue
	}
	return true
}

// ActivityMatchesSearch matches summary, note, type name and linked record name.
func ActivityMatchesSearch(a *model.ActivityView, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{a.Summary, a.Note, a.TypeName, a.ResName} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Activities filters activities. The done filter keeps only done activities;
// every other filter drops them.
func Activities(activities []*model.ActivityView, opts ActivityOptions) []*model.ActivityView {
	kind := opts.Kind
	if kind == "" {
		kind = ActivityAll
	}
	today := Day(time.Now())
	if !opts.Now.IsZero() {
		today = Day(opts.Now)
	}

	var out []*model.ActivityView
	for _, a := range activities {
		if a.Done != (kind == ActivityDone) {
			continue
		}
		if !ActivityMatchesDate(a, kind, today, opts.WeekStart) {
			continue
		}
		if !ActivityMatchesSearch(a, opts.Search) {
			continue
		}
		out = append(out, a)
	}
	return out
}
