// Package timer accrues tracked time onto timesheet lines.
//
// A single timer is bound to at most one timesheet line. Its state lives in
// the runtime state store so that separate command invocations see the same
// timer; within a process every transition holds the service mutex.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
)

// StateRepo loads and saves the timer state.
type StateRepo interface {
	Load() (*model.TimerState, error)
	Save(state *model.TimerState) error
	Clear() error
}

// Service drives the timer state machine.
type Service struct {
	mu    sync.Mutex
	db    *storage.DB
	state StateRepo
	now   func() time.Time
}

// New creates a timer service.
func New(db *storage.DB, state StateRepo) *Service {
	return &Service{db: db, state: state, now: time.Now}
}

// WithClock replaces the wall clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Status describes the timer after an operation.
type Status struct {
	model.Result
	State       model.TimerStatus `json:"state"`
	TimesheetID int64             `json:"timesheet_id,omitempty"`
	Label       string            `json:"label,omitempty"`
	Elapsed     time.Duration     `json:"-"`
	ElapsedText string            `json:"elapsed"`
	Hours       float64           `json:"hours"`
}

// elapsed returns the time accrued in the current session, excluding pauses.
func elapsed(st *model.TimerState, now time.Time) time.Duration {
	var d time.Duration
	switch st.Status {
	case model.TimerRunning:
		d = now.Sub(st.StartedAt)
	case model.TimerPaused:
		d = st.PausedAt.Sub(st.StartedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// total returns previously tracked time plus the current session.
func total(st *model.TimerState, now time.Time) time.Duration {
	return HoursToDuration(st.PreviouslyTracked) + elapsed(st, now)
}

func statusOf(st *model.TimerState, now time.Time, message string) Status {
	out := Status{Result: model.OK(message), State: st.Status}
	if !st.IsActive() {
		out.State = model.TimerIdle
		out.ElapsedText = FormatHMS(0)
		return out
	}
	d := total(st, now)
	out.TimesheetID = st.TimesheetID
	out.Label = st.Label
	out.Elapsed = d
	out.ElapsedText = FormatHMS(d)
	out.Hours = DurationToHours(d)
	return out
}

func (s *Service) fail(ctx context.Context, op string, err error) Status {
	if errors.KindOf(err) == errors.KindUnknown {
		err = errors.WithStack(errors.Storage(op, err), "timer."+op)
	}
	logging.LogFailure(ctx, op, err)
	return Status{Result: model.Fail(err), State: model.TimerIdle, ElapsedText: FormatHMS(0)}
}

// liveLine loads a timesheet line. A soft-deleted line reads as missing.
func liveLine(ctx context.Context, repo *storage.TimesheetRepo, id int64) (*model.TimesheetEntry, error) {
	entry, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.SyncStatus.IsDeleted() {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// flush persists the accrued hours of the bound line with the given mark.
// It returns storage.ErrNotFound when the line is gone or soft-deleted.
func flush(ctx context.Context, q storage.Querier, st *model.TimerState, now time.Time, mark model.TimerMark) error {
	repo := storage.NewTimesheetRepo(q)
	if _, err := liveLine(ctx, repo, st.TimesheetID); err != nil {
		return err
	}
	hours := DurationToHours(total(st, now))
	return repo.SetDuration(ctx, st.TimesheetID, hours, mark)
}

// drop clears a timer whose line no longer exists or was deleted. Its
// unflushed time has nowhere to go.
func (s *Service) drop(ctx context.Context, op string, st *model.TimerState) Status {
	if err := s.state.Clear(); err != nil {
		return s.fail(ctx, op, err)
	}
	logging.LogOperation(ctx, op, logging.KeyTimesheet, st.TimesheetID, "dropped", true)
	return statusOf(model.NewTimerState(), s.now(), "Timesheet line no longer exists; timer cleared")
}

// Start binds the timer to a timesheet line and starts it. Starting the
// line that is already running is a no-op; starting a paused line resumes
// it. Switching to another line flushes the previous one and leaves it
// paused.
func (s *Service) Start(ctx context.Context, timesheetID int64) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_start", err)
	}
	if st.IsActive() && st.TimesheetID == timesheetID {
		if st.Status == model.TimerRunning {
			return statusOf(st, s.now(), "Timer already running")
		}
		return s.resume(ctx, st)
	}

	entry, err := liveLine(ctx, storage.NewTimesheetRepo(s.db), timesheetID)
	if err != nil {
		if errors.IsNotFound(err) {
			err = errors.ErrTimesheetNotFound
		}
		return s.fail(ctx, "timer_start", err)
	}
	if !entry.HasProject() {
		return s.fail(ctx, "timer_start", errors.NewUserError(
			"Please select a project before starting the timer",
			"Assign a project to the timesheet line first."))
	}

	now := s.now()
	next := &model.TimerState{
		Status:            model.TimerRunning,
		TimesheetID:       entry.ID,
		StartedAt:         now,
		PreviouslyTracked: entry.UnitAmount,
		Label:             entry.Name,
	}
	err = s.db.WithTx(ctx, func(q storage.Querier) error {
		if st.IsActive() {
			// The previous line may have been deleted since.
			if err := flush(ctx, q, st, now, model.TimerMarkPaused); err != nil && !errors.IsNotFound(err) {
				return err
			}
		}
		return storage.NewTimesheetRepo(q).SetDuration(ctx, entry.ID, entry.UnitAmount, model.TimerMarkRunning)
	})
	if err != nil {
		return s.fail(ctx, "timer_start", err)
	}
	if err := s.state.Save(next); err != nil {
		return s.fail(ctx, "timer_start", err)
	}

	if st.IsActive() {
		logging.LogOperation(ctx, "timer_switch", logging.KeyTimesheet, entry.ID, "previous", st.TimesheetID)
	} else {
		logging.LogOperation(ctx, "timer_start", logging.KeyTimesheet, entry.ID)
	}
	return statusOf(next, now, "Timer started")
}

// Pause flushes the running session and pauses the timer.
func (s *Service) Pause(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_pause", err)
	}
	switch st.Status {
	case model.TimerPaused:
		return statusOf(st, s.now(), "Timer already paused")
	case model.TimerRunning:
	default:
		return s.fail(ctx, "timer_pause", errors.ErrNoActiveTimer)
	}

	st.PausedAt = s.now()
	st.Status = model.TimerPaused
	if err := flush(ctx, s.db, st, st.PausedAt, model.TimerMarkPaused); err != nil {
		if errors.IsNotFound(err) {
			return s.drop(ctx, "timer_pause", st)
		}
		return s.fail(ctx, "timer_pause", err)
	}
	if err := s.state.Save(st); err != nil {
		return s.fail(ctx, "timer_pause", err)
	}
	logging.LogOperation(ctx, "timer_pause", logging.KeyTimesheet, st.TimesheetID)
	return statusOf(st, st.PausedAt, "Timer paused")
}

// Resume continues a paused timer. The paused interval is not counted.
func (s *Service) Resume(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_resume", err)
	}
	switch st.Status {
	case model.TimerRunning:
		return statusOf(st, s.now(), "Timer already running")
	case model.TimerPaused:
		return s.resume(ctx, st)
	}
	return s.fail(ctx, "timer_resume", errors.ErrNoActiveTimer)
}

func (s *Service) resume(ctx context.Context, st *model.TimerState) Status {
	now := s.now()
	st.StartedAt = st.StartedAt.Add(now.Sub(st.PausedAt))
	st.PausedAt = time.Time{}
	st.Status = model.TimerRunning
	if err := flush(ctx, s.db, st, now, model.TimerMarkRunning); err != nil {
		if errors.IsNotFound(err) {
			return s.drop(ctx, "timer_resume", st)
		}
		return s.fail(ctx, "timer_resume", err)
	}
	if err := s.state.Save(st); err != nil {
		return s.fail(ctx, "timer_resume", err)
	}
	logging.LogOperation(ctx, "timer_resume", logging.KeyTimesheet, st.TimesheetID)
	return statusOf(st, now, "Timer resumed")
}

// Stop flushes the final duration, marks the line as locally modified and
// returns the timer to idle. A timer whose line was deleted is cleared
// without touching the line.
func (s *Service) Stop(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_stop", err)
	}
	if !st.IsActive() {
		return s.fail(ctx, "timer_stop", errors.ErrNoActiveTimer)
	}

	now := s.now()
	final := statusOf(st, now, "")
	err = s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		entry, err := liveLine(ctx, repos.Timesheets, st.TimesheetID)
		if err != nil {
			return err
		}
		if err := flush(ctx, q, st, now, model.TimerMarkStopped); err != nil {
			return err
		}
		if entry.SyncStatus != model.SyncNew {
			if err := repos.Timesheets.SetSyncStatus(ctx, entry.ID, model.SyncUpdated); err != nil {
				return err
			}
		}
		return repos.Notifications.Create(ctx, &model.Notification{
			AccountID: entry.AccountID,
			Kind:      model.NotifyTimesheet,
			Title:     "Timer stopped",
			Body:      fmt.Sprintf("Tracked %s on %s", HoursToHHMM(final.Hours), entry.Name),
			RecordID:  &entry.ID,
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return s.drop(ctx, "timer_stop", st)
		}
		return s.fail(ctx, "timer_stop", err)
	}
	if err := s.state.Clear(); err != nil {
		return s.fail(ctx, "timer_stop", err)
	}

	logging.LogOperation(ctx, "timer_stop", logging.KeyTimesheet, st.TimesheetID, "elapsed", final.ElapsedText)
	final.State = model.TimerIdle
	final.Message = "Timer stopped: " + final.ElapsedText
	return final
}

// Reset forces the timer to idle without flushing. Hours already written to
// the line stay as they are.
func (s *Service) Reset(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_reset", err)
	}
	if st.IsActive() {
		repo := storage.NewTimesheetRepo(s.db)
		entry, err := liveLine(ctx, repo, st.TimesheetID)
		switch {
		case err == nil:
			if err := repo.SetDuration(ctx, entry.ID, entry.UnitAmount, model.TimerMarkNone); err != nil {
				return s.fail(ctx, "timer_reset", err)
			}
		case !errors.IsNotFound(err):
			return s.fail(ctx, "timer_reset", err)
		}
	}
	if err := s.state.Clear(); err != nil {
		return s.fail(ctx, "timer_reset", err)
	}
	logging.LogOperation(ctx, "timer_reset", logging.KeyTimesheet, st.TimesheetID)
	return statusOf(model.NewTimerState(), s.now(), "Timer reset")
}

// Status reports the current timer without changing it.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return s.fail(ctx, "timer_status", err)
	}
	if !st.IsActive() {
		return statusOf(st, s.now(), "No active timer")
	}
	return statusOf(st, s.now(), "")
}
