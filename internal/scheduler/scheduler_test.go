package scheduler

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/storage"
)

type fixture struct {
	db      *storage.DB
	rec     *records.Service
	checker *ReminderChecker
	clock   time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, clock: time.Date(2025, 6, 11, 9, 0, 0, 0, time.Local)}
	clock := func() time.Time { return f.clock }
	f.rec = records.New(db).WithClock(clock)
	f.checker = NewReminderChecker(db, f.rec).WithClock(clock)
	return f
}

func (f *fixture) activity(t *testing.T, summary string, due *time.Time) int64 {
	t.Helper()
	r := f.rec.CreateActivity(context.Background(), &model.Activity{
		Syncable: model.Syncable{AccountID: 1},
		Summary:  summary,
		DueDate:  due,
	})
	require.True(t, r.Success, r.Message)
	return r.ID
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func TestCheckCreatesRemindersForDueActivities(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	overdue := f.activity(t, "Send invoice", day(2025, 6, 9))
	today := f.activity(t, "Call client", day(2025, 6, 11))
	f.activity(t, "Plan sprint", day(2025, 6, 20))
	f.activity(t, "Someday", nil)

	res := f.checker.Check(ctx, model.AllAccounts)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.Due)
	require.Len(t, res.Created, 2)

	byRecord := map[int64]*model.Notification{}
	for _, n := range res.Created {
		require.NotNil(t, n.RecordID)
		byRecord[*n.RecordID] = n
		assert.Equal(t, model.NotifyActivity, n.Kind)
		assert.False(t, n.Read)
	}
	assert.Equal(t, "Activity overdue", byRecord[overdue].Title)
	assert.Contains(t, byRecord[overdue].Body, "Send invoice")
	assert.Equal(t, "Activity due today", byRecord[today].Title)

	stored, err := f.rec.Notifications(ctx, model.AllAccounts, true)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCheckIsIdempotentWithinADay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.activity(t, "Call client", day(2025, 6, 11))

	first := f.checker.Check(ctx, model.AllAccounts)
	require.True(t, first.Success)
	assert.Len(t, first.Created, 1)

	f.clock = f.clock.Add(6 * time.Hour)
	second := f.checker.Check(ctx, model.AllAccounts)
	require.True(t, second.Success)
	assert.Equal(t, 1, second.Due)
	assert.Empty(t, second.Created)
	assert.Equal(t, "No new reminders", second.Message)
}

func TestCheckRemindsAgainNextDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.activity(t, "Send invoice", day(2025, 6, 11))

	require.Len(t, f.checker.Check(ctx, model.AllAccounts).Created, 1)

	f.clock = f.clock.Add(24 * time.Hour)
	res := f.checker.Check(ctx, model.AllAccounts)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "Activity overdue", res.Created[0].Title)
}

func TestCheckSkipsDoneActivities(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.activity(t, "Call client", day(2025, 6, 10))
	require.True(t, f.rec.MarkActivityDone(ctx, id).Success)

	res := f.checker.Check(ctx, model.AllAccounts)
	require.True(t, res.Success)
	assert.Zero(t, res.Due)
	assert.Empty(t, res.Created)
}

func TestNotifiedTodayIgnoresOtherKindsAndDays(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.Local)
	id1, id2, id3 := int64(1), int64(2), int64(3)
	existing := []*model.Notification{
		{Kind: model.NotifyActivity, RecordID: &id1, CreatedAt: now.Add(-time.Hour)},
		{Kind: model.NotifyTask, RecordID: &id2, CreatedAt: now},
		{Kind: model.NotifyActivity, RecordID: &id3, CreatedAt: now.Add(-48 * time.Hour)},
		{Kind: model.NotifyActivity, CreatedAt: now},
	}
	sent := notifiedToday(existing, now)
	assert.Equal(t, map[int64]bool{1: true}, sent)
}

func TestReminderBodyIsCapped(t *testing.T) {
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.Local)
	a := &model.ActivityView{Activity: &model.Activity{
		Summary: strings.Repeat("long summary ", 40),
		DueDate: day(2025, 6, 11),
	}}
	a.ID = 7

	n := reminderFor(a, now)
	assert.Equal(t, maxReminderBody, utf8.RuneCountInString(n.Body))
	assert.True(t, strings.HasSuffix(n.Body, "..."))
	assert.Equal(t, "Activity due today", n.Title)
}
