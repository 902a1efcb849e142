package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

// Kind is a task date filter.
type Kind string

const (
	All       Kind = "all"
	Today     Kind = "today"
	ThisWeek  Kind = "this_week"
	NextWeek  Kind = "next_week"
	ThisMonth Kind = "this_month"
	Overdue   Kind = "overdue"
	Later     Kind = "later"
	Done      Kind = "done"
)

// Kinds lists the task filters in display order.
var Kinds = []Kind{All, Today, ThisWeek, NextWeek, ThisMonth, Overdue, Later, Done}

// ParseKind parses a task filter name. Empty means All.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return All, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidFilter, s)
}

var (
	doneStages      = []string{"done", "completed", "finished", "closed", "verified"}
	cancelledStages = []string{"cancelled", "canceled"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// IsDoneStage reports whether a stage name means finished work.
// Cancelled stages are never done.
func IsDoneStage(name string) bool {
	return containsAny(strings.ToLower(name), doneStages) && !IsCancelledStage(name)
}

// IsCancelledStage reports whether a stage name means cancelled work.
func IsCancelledStage(name string) bool {
	return containsAny(strings.ToLower(name), cancelledStages)
}

// Options controls Tasks.
type Options struct {
	Kind   Kind
	Search string
	// Scope is the account scope of the list; model.AllAccounts enables the
	// cross-account assignee guard.
	Scope     int64
	Assignees []model.AssigneeRef
	// Now defaults to time.Now.
	Now       time.Time
	WeekStart time.Weekday
}

func (o Options) today() time.Time {
	if o.Now.IsZero() {
		return Day(time.Now())
	}
	return Day(o.Now)
}

// IsOverdue reports whether a task is past its deadline, or past its end date
// when it has no deadline. Tasks in a done stage are never overdue.
func IsOverdue(v *model.TaskView, today time.Time) bool {
	if IsDoneStage(v.StageName) {
		return false
	}
	today = Day(today)
	switch {
	case v.Deadline != nil:
		return today.After(Day(*v.Deadline))
	case v.EndDate != nil:
		return today.After(Day(*v.EndDate))
	}
	return false
}

// MatchesDate reports whether a task passes a date filter on its own.
func MatchesDate(v *model.TaskView, kind Kind, today time.Time, weekStart time.Weekday) bool {
	if kind == All {
		return true
	}
	if v.StartDate == nil && v.EndDate == nil {
		return false
	}
	if v.Folded && kind != Done {
		return false
	}

	today = Day(today)
	switch kind {
	case Today:
		return TodayWindow(today).Overlaps(v.StartDate, v.EndDate) || IsOverdue(v, today)
	case ThisWeek:
		return WeekWindow(today, weekStart).Overlaps(v.StartDate, v.EndDate)
	case NextWeek:
		return NextWeekWindow(today, weekStart).Overlaps(v.StartDate, v.EndDate)
	case ThisMonth:
		return MonthWindow(today).Overlaps(v.StartDate, v.EndDate)
	case Overdue:
		return IsOverdue(v, today)
	case Later:
		start := v.StartDate
		if start == nil {
			start = v.EndDate
		}
		return Day(*start).After(MonthWindow(today).To) && !IsOverdue(v, today)
	case Done:
		return IsDoneStage(v.StageName)
	}
	return false
}

// MatchesSearch is a case-insensitive substring match on name, description
// and status. An empty query matches everything.
func MatchesSearch(v *model.TaskView, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(v.Name), query) ||
		strings.Contains(strings.ToLower(v.Description), query) ||
		strings.Contains(strings.ToLower(v.Status), query)
}

// MatchesAssignees reports whether any assignee of the task is in refs.
//
// With scope model.AllAccounts a ref only matches tasks of its own account,
// since remote user ids of independent backends can collide. A ref whose
// account is unknown (model.AllAccounts) still matches on the id alone.
func MatchesAssignees(v *model.TaskView, refs []model.AssigneeRef, scope int64) bool {
	if len(refs) == 0 {
		return true
	}
	for _, ref := range refs {
		if !v.AssigneeIDs.Contains(ref.UserID) {
			continue
		}
		if scope != model.AllAccounts || ref.AccountID == model.AllAccounts || ref.AccountID == v.AccountID {
			return true
		}
	}
	return false
}

func parentKey(v *model.TaskView) (model.RecordKey, bool) {
	if !v.IsSubtask() {
		return model.RecordKey{}, false
	}
	return model.RecordKey{RemoteID: v.ParentID, AccountID: v.AccountID}, true
}

// Tasks filters a flat task list and keeps the hierarchy readable: parents of
// matching tasks and their whole ancestor chain stay visible, and matching
// subtasks of visible parents are kept. Input order is preserved.
func Tasks(tasks []*model.TaskView, opts Options) []*model.TaskView {
	kind := opts.Kind
	if kind == "" {
		kind = All
	}
	today := opts.today()
	search := strings.TrimSpace(opts.Search)

	byKey := make(map[model.RecordKey]*model.TaskView, len(tasks))
	children := make(map[model.RecordKey][]*model.TaskView)
	for _, v := range tasks {
		byKey[v.Key()] = v
		if pk, ok := parentKey(v); ok {
			children[pk] = append(children[pk], v)
		}
	}

	dateOK := func(v *model.TaskView) bool {
		return MatchesDate(v, kind, today, opts.WeekStart)
	}

	included := make(map[model.RecordKey]bool)
	var direct []*model.TaskView

	// Pass 1: tasks matching on their own.
	for _, v := range tasks {
		if dateOK(v) && MatchesSearch(v, search) && MatchesAssignees(v, opts.Assignees, opts.Scope) {
			included[v.Key()] = true
			direct = append(direct, v)
		}
	}

	// Pass 2: tasks with an included child.
	for _, v := range tasks {
		if included[v.Key()] {
			continue
		}
		for _, c := range children[v.Key()] {
			if included[c.Key()] {
				included[v.Key()] = true
				break
			}
		}
	}

	// Pass 3: the full ancestor chain of every included task.
	var queue []model.RecordKey
	for key := range included {
		queue = append(queue, key)
	}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		v, ok := byKey[key]
		if !ok {
			continue
		}
		pk, ok := parentKey(v)
		if !ok || included[pk] {
			continue
		}
		if _, known := byKey[pk]; !known {
			continue
		}
		included[pk] = true
		queue = append(queue, pk)
	}

	// Pass 4: descendants of visible tasks.
	switch {
	case kind == All && search != "":
		addDescendants(direct, children, included, func(*model.TaskView) bool { return true })
	case kind != All:
		var roots []*model.TaskView
		for _, v := range tasks {
			if included[v.Key()] {
				roots = append(roots, v)
			}
		}
		addDescendants(roots, children, included, dateOK)
	}

	out := make([]*model.TaskView, 0, len(included))
	for _, v := range tasks {
		if included[v.Key()] {
			out = append(out, v)
		}
	}
	return out
}

func addDescendants(roots []*model.TaskView, children map[model.RecordKey][]*model.TaskView,
	included map[model.RecordKey]bool, keep func(*model.TaskView) bool) {
	queue := append([]*model.TaskView(nil), roots...)
	seen := make(map[model.RecordKey]bool, len(roots))
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if seen[v.Key()] {
			continue
		}
		seen[v.Key()] = true
		for _, c := range children[v.Key()] {
			if included[c.Key()] {
				queue = append(queue, c)
				continue
			}
			if keep(c) {
				included[c.Key()] = true
				queue = append(queue, c)
			}
		}
	}
}
