package records

import (
	"context"
	"fmt"
	"time"

	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/hierarchy"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/timer"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Timesheets returns the live timesheet lines of a scope, newest first.
func (s *Service) Timesheets(ctx context.Context, scope int64) ([]*model.TimesheetView, error) {
	repos, h := bind(s.db)
	lines, err := repos.Timesheets.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("list_timesheets", err)
	}
	return timesheetViews(ctx, repos, h, scope, lines)
}

func timesheetViews(ctx context.Context, repos *storage.Repos, h *hierarchy.Resolver, scope int64,
	lines []*model.TimesheetEntry) ([]*model.TimesheetView, error) {
	projects, err := repos.Projects.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("timesheet_projects", err)
	}
	projectNames := make(map[model.RecordKey]string, len(projects))
	for _, p := range projects {
		projectNames[p.Key()] = p.Name
	}
	tasks, err := repos.Tasks.List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("timesheet_tasks", err)
	}
	taskNames := make(map[model.RecordKey]string, len(tasks))
	for _, t := range tasks {
		taskNames[t.Key()] = t.Name
	}

	views := make([]*model.TimesheetView, 0, len(lines))
	for _, l := range lines {
		v := &model.TimesheetView{
			TimesheetEntry: l,
			Color: h.ColorOf(ctx, model.Linkage{ProjectID: l.ProjectID, SubProjectID: l.SubProjectID},
				l.AccountID),
			Duration: timer.HoursToHHMM(l.UnitAmount),
		}
		project, task := l.ProjectID, l.TaskID
		if l.SubProjectID.IsSet() {
			project = l.SubProjectID
		}
		if l.SubTaskID.IsSet() {
			task = l.SubTaskID
		}
		v.ProjectName = projectNames[model.RecordKey{RemoteID: project, AccountID: l.AccountID}]
		v.TaskName = taskNames[model.RecordKey{RemoteID: task, AccountID: l.AccountID}]
		views = append(views, v)
	}
	return views, nil
}

// Timesheet returns one line by local id.
func (s *Service) Timesheet(ctx context.Context, id int64) (*model.TimesheetView, error) {
	repos, h := bind(s.db)
	l, err := repos.Timesheets.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrTimesheetNotFound)
	}
	views, err := timesheetViews(ctx, repos, h, l.AccountID, []*model.TimesheetEntry{l})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// TimesheetInput describes a new timesheet line. TaskID takes precedence
// over ProjectID; both are remote ids in AccountID.
type TimesheetInput struct {
	AccountID int64
	Name      string
	TaskID    model.Ref
	ProjectID model.Ref
	UserID    model.Ref
	Quadrant  int
	Hours     float64
	Date      time.Time
}

// CreateTimesheet adds a local line. Logging against a task fills the
// project, sub-project, task and subtask from the hierarchy; logging against
// a project fills the project and sub-project.
func (s *Service) CreateTimesheet(ctx context.Context, in TimesheetInput) CreateResult {
	if err := validate.Quadrant(in.Quadrant); err != nil {
		return CreateResult{Result: fail(ctx, "create_timesheet", err)}
	}
	if in.Hours < 0 {
		err := errors.Invalid(errors.ErrInvalidDuration, "hours", fmt.Sprint(in.Hours))
		return CreateResult{Result: fail(ctx, "create_timesheet", err)}
	}

	e := &model.TimesheetEntry{
		Syncable:     model.Syncable{RemoteID: model.Unresolved, AccountID: in.AccountID, SyncStatus: model.SyncNew},
		Name:         validate.SanitizeName(in.Name),
		ProjectID:    model.Unresolved,
		SubProjectID: model.Unresolved,
		TaskID:       model.Unresolved,
		SubTaskID:    model.Unresolved,
		UserID:       unsetRef(in.UserID),
		Quadrant:     model.Quadrant(in.Quadrant),
		UnitAmount:   timer.DurationToHours(timer.HoursToDuration(in.Hours)),
		RecordDate:   in.Date,
	}
	if e.RecordDate.IsZero() {
		e.RecordDate = s.today()
	}

	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos, h := bind(q)
		switch {
		case in.TaskID.IsSet():
			t, err := repos.Tasks.GetByRemoteID(ctx, in.TaskID, in.AccountID)
			if err != nil {
				return notFound(err, errors.ErrTaskNotFound)
			}
			h.FillTimesheet(ctx, e, in.TaskID)
			if e.Name == "" {
				e.Name = t.Name
			}
		case in.ProjectID.IsSet():
			p, err := repos.Projects.GetByRemoteID(ctx, in.ProjectID, in.AccountID)
			if err != nil {
				return notFound(err, errors.ErrProjectNotFound)
			}
			h.FillTimesheetFromProject(ctx, e, in.ProjectID)
			if e.Name == "" {
				e.Name = p.Name
			}
		}
		if e.Name == "" {
			e.Name = "/"
		}
		return repos.Timesheets.Create(ctx, e)
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_timesheet", err, logging.KeyAccount, in.AccountID)}
	}
	logging.LogOperation(ctx, "create_timesheet", logging.KeyTimesheet, e.ID,
		logging.KeyProject, e.ProjectID, logging.KeyTask, e.TaskID)
	return created("Timesheet created", e.ID, e.RemoteID)
}

// DeleteTimesheet soft-deletes a line and discards its drafts. A timer still
// bound to the line is cleared by its next transition without writing to it.
func (s *Service) DeleteTimesheet(ctx context.Context, id int64) model.Result {
	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewTimesheetRepo(q)
		l, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrTimesheetNotFound)
		}
		if l.SyncStatus.IsDeleted() {
			return errors.ErrTimesheetNotFound
		}
		if err := repo.MarkDeleted(ctx, id); err != nil {
			return err
		}
		_, err = draft.PurgeRecords(ctx, q, model.FormTimesheet, []int64{id})
		return err
	})
	if err != nil {
		return fail(ctx, "delete_timesheet", err, logging.KeyTimesheet, id)
	}
	logging.LogOperation(ctx, "delete_timesheet", logging.KeyTimesheet, id)
	return model.OK("Timesheet deleted")
}
