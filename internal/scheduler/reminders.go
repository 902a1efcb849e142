// Package scheduler turns due activities into local notifications.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// maxReminderBody caps the body of a reminder notification in runes.
const maxReminderBody = 200

// ReminderChecker raises a notification for every open activity that is due
// today or overdue. Each activity is reported at most once per day.
type ReminderChecker struct {
	db      *storage.DB
	records *records.Service
	now     func() time.Time
}

// CheckResult is the outcome of one reminder pass.
type CheckResult struct {
	model.Result
	Due     int                   `json:"due"`
	Created []*model.Notification `json:"created"`
}

// NewReminderChecker creates a new reminder checker.
func NewReminderChecker(db *storage.DB, rec *records.Service) *ReminderChecker {
	return &ReminderChecker{db: db, records: rec, now: time.Now}
}

// WithClock replaces the wall clock.
func (c *ReminderChecker) WithClock(now func() time.Time) *ReminderChecker {
	c.now = now
	return c
}

// Check scans the activities in scope and writes the missing reminders.
func (c *ReminderChecker) Check(ctx context.Context, scope int64) CheckResult {
	now := c.now()
	due, err := c.records.FilterActivities(ctx, scope, filter.ActivityOptions{
		Kind: filter.ActivityToday,
		Now:  now,
	})
	if err != nil {
		logging.LogFailure(ctx, "check_reminders", err, logging.KeyAccount, scope)
		return CheckResult{Result: model.Fail(err)}
	}

	out := CheckResult{Due: len(due), Created: []*model.Notification{}}
	err = c.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewNotificationRepo(q)
		existing, err := repo.List(ctx, scope, false)
		if err != nil {
			return err
		}
		sent := notifiedToday(existing, now)

		for _, a := range due {
			if sent[a.ID] {
				continue
			}
			n := reminderFor(a, now)
			if err := repo.Create(ctx, n); err != nil {
				return err
			}
			sent[a.ID] = true
			out.Created = append(out.Created, n)
		}
		return nil
	})
	if err != nil {
		logging.LogFailure(ctx, "check_reminders", err, logging.KeyAccount, scope)
		return CheckResult{Result: model.Fail(err)}
	}

	logging.LogOperation(ctx, "check_reminders", logging.KeyCount, len(out.Created))
	switch len(out.Created) {
	case 0:
		out.Result = model.OK("No new reminders")
	case 1:
		out.Result = model.OK("1 new reminder")
	default:
		out.Result = model.OK(fmt.Sprintf("%d new reminders", len(out.Created)))
	}
	return out
}

// notifiedToday collects the activity ids that already have a reminder
// created on the same calendar day as now.
func notifiedToday(existing []*model.Notification, now time.Time) map[int64]bool {
	today := filter.Day(now)
	sent := make(map[int64]bool)
	for _, n := range existing {
		if n.Kind != model.NotifyActivity || n.RecordID == nil {
			continue
		}
		if filter.Day(n.CreatedAt.In(now.Location())).Equal(today) {
			sent[*n.RecordID] = true
		}
	}
	return sent
}

func reminderFor(a *model.ActivityView, now time.Time) *model.Notification {
	title := "Activity due today"
	if a.DueDate != nil && filter.Day(*a.DueDate).Before(filter.Day(now)) {
		title = "Activity overdue"
	}
	body := a.Summary
	if a.ResName != "" {
		body += " (" + a.ResName + ")"
	}
	if a.DueDate != nil {
		body += ", due " + a.DueDate.Format("Mon Jan 2")
	}
	id := a.ID
	return &model.Notification{
		AccountID: a.AccountID,
		Kind:      model.NotifyActivity,
		Title:     title,
		Body:      validate.TruncateString(body, maxReminderBody),
		RecordID:  &id,
		CreatedAt: now,
	}
}
