package records

import (
	"context"
	"time"

	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/hierarchy"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

const keyActivity = "activity_id"

// Activities returns the live activities of a scope with their linkage and
// type name. includeDone adds completed activities.
func (s *Service) Activities(ctx context.Context, scope int64, includeDone bool) ([]*model.ActivityView, error) {
	repos, h := bind(s.db)
	activities, err := repos.Activities.List(ctx, scope, includeDone)
	if err != nil {
		return nil, errors.Storage("list_activities", err)
	}
	return activityViews(ctx, repos, h, activities)
}

// FilterActivities lists and filters activities. The done filter is the only
// one that sees completed activities.
func (s *Service) FilterActivities(ctx context.Context, scope int64, opts filter.ActivityOptions) ([]*model.ActivityView, error) {
	views, err := s.Activities(ctx, scope, opts.Kind == filter.ActivityDone)
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	return filter.Activities(views, opts), nil
}

func activityViews(ctx context.Context, repos *storage.Repos, h *hierarchy.Resolver,
	activities []*model.Activity) ([]*model.ActivityView, error) {
	typeNames := make(map[int64]map[model.Ref]string)
	for _, acct := range accountsOf(activities, func(a *model.Activity) int64 { return a.AccountID }) {
		names, err := repos.Activities.TypeNames(ctx, acct)
		if err != nil {
			return nil, errors.Storage("activity_types", err)
		}
		typeNames[acct] = names
	}

	views := make([]*model.ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, &model.ActivityView{
			Activity: a,
			Linkage:  h.ActivityLinkage(ctx, a),
			TypeName: typeNames[a.AccountID][a.ActivityTypeID],
		})
	}
	return views, nil
}

// Activity returns one activity by local id.
func (s *Service) Activity(ctx context.Context, id int64) (*model.ActivityView, error) {
	repos, h := bind(s.db)
	a, err := repos.Activities.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrActivityNotFound)
	}
	views, err := activityViews(ctx, repos, h, []*model.Activity{a})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CreateActivity adds a local activity. A linked project or task must exist;
// its name is copied into ResName.
func (s *Service) CreateActivity(ctx context.Context, a *model.Activity) CreateResult {
	a.Summary = validate.SanitizeName(a.Summary)
	a.Note = validate.SanitizeNote(a.Note)
	if a.Summary == "" {
		a.Summary = "Untitled"
	}
	if err := validate.Name("activity", a.Summary); err != nil {
		return CreateResult{Result: fail(ctx, "create_activity", err)}
	}
	if err := validate.Note(a.Note); err != nil {
		return CreateResult{Result: fail(ctx, "create_activity", err)}
	}

	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		if err := fillResName(ctx, repos, a); err != nil {
			return err
		}
		a.RemoteID = localRemoteID(a.RemoteID)
		a.SyncStatus = model.SyncNew
		return repos.Activities.Create(ctx, a)
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_activity", err, logging.KeyAccount, a.AccountID)}
	}
	logging.LogOperation(ctx, "create_activity", keyActivity, a.ID, "res_model", a.ResModel)
	return created("Activity created", a.ID, a.RemoteID)
}

func fillResName(ctx context.Context, repos *storage.Repos, a *model.Activity) error {
	if !a.ResID.IsSet() {
		return nil
	}
	switch a.ResModel {
	case model.ResModelProject:
		id := repos.IDs.LocalID(ctx, storage.EntityProject, a.ResID, a.AccountID)
		if id == storage.NotFoundID {
			return errors.ErrProjectNotFound
		}
		p, err := repos.Projects.Get(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrProjectNotFound)
		}
		a.ResName = p.Name
	case model.ResModelTask:
		id := repos.IDs.LocalID(ctx, storage.EntityTask, a.ResID, a.AccountID)
		if id == storage.NotFoundID {
			return errors.ErrTaskNotFound
		}
		t, err := repos.Tasks.Get(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrTaskNotFound)
		}
		a.ResName = t.Name
	}
	return nil
}

// CreateLinkedActivity adds an untitled activity due today on a project or a
// task.
func (s *Service) CreateLinkedActivity(ctx context.Context, accountID int64, resModel string, resID model.Ref) CreateResult {
	if resModel != model.ResModelProject && resModel != model.ResModelTask {
		err := errors.NewUserErrorWithField("res_model", resModel,
			"Activities can only be linked to a project or a task",
			"Use "+model.ResModelProject+" or "+model.ResModelTask)
		return CreateResult{Result: fail(ctx, "create_linked_activity", err)}
	}
	today := s.today()
	return s.CreateActivity(ctx, &model.Activity{
		Syncable: model.Syncable{AccountID: accountID},
		Summary:  "Untitled",
		DueDate:  &today,
		ResModel: resModel,
		ResID:    resID,
	})
}

// CreateFollowUp copies an activity into a new one named "Followup: ..."
// due today. The source must be linked to a record.
func (s *Service) CreateFollowUp(ctx context.Context, id int64) CreateResult {
	src, err := storage.NewActivityRepo(s.db).Get(ctx, id)
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_followup", notFound(err, errors.ErrActivityNotFound), keyActivity, id)}
	}
	if src.ResModel == "" || !src.ResID.IsSet() {
		err := errors.NewUserError("Activity is not linked to a record",
			"Follow-ups need an activity attached to a project or task")
		return CreateResult{Result: fail(ctx, "create_followup", err, keyActivity, id)}
	}
	today := s.today()
	return s.CreateActivity(ctx, &model.Activity{
		Syncable:       model.Syncable{AccountID: src.AccountID},
		Summary:        "Followup: " + src.Summary,
		Note:           src.Note,
		ActivityTypeID: src.ActivityTypeID,
		UserID:         src.UserID,
		DueDate:        &today,
		ResModel:       src.ResModel,
		ResID:          src.ResID,
	})
}

// updateActivity loads an activity, applies edit and writes it back marked
// as locally modified.
func (s *Service) updateActivity(ctx context.Context, op string, id int64,
	edit func(q storage.Querier, a *model.Activity) error) model.Result {
	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewActivityRepo(q)
		a, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrActivityNotFound)
		}
		if a.SyncStatus.IsDeleted() {
			return errors.ErrActivityNotFound
		}
		a.SyncStatus = a.SyncStatus.Modified()
		if err := edit(q, a); err != nil {
			return err
		}
		return repo.Update(ctx, a)
	})
	if err != nil {
		return fail(ctx, op, err, keyActivity, id)
	}
	logging.LogOperation(ctx, op, keyActivity, id)
	return model.OK("")
}

// MarkActivityDone completes an activity.
func (s *Service) MarkActivityDone(ctx context.Context, id int64) model.Result {
	r := s.updateActivity(ctx, "activity_done", id, func(_ storage.Querier, a *model.Activity) error {
		a.Done = true
		return nil
	})
	if r.Success {
		r.Message = "Activity marked as done"
	}
	return r
}

// RescheduleActivity moves an activity's due date.
func (s *Service) RescheduleActivity(ctx context.Context, id int64, due time.Time) model.Result {
	day := filter.Day(due)
	r := s.updateActivity(ctx, "reschedule_activity", id, func(_ storage.Querier, a *model.Activity) error {
		a.DueDate = &day
		return nil
	})
	if r.Success {
		r.Message = "Activity rescheduled to " + day.Format(model.DateLayout)
	}
	return r
}

// DeleteActivity soft-deletes an activity and discards its drafts.
func (s *Service) DeleteActivity(ctx context.Context, id int64) model.Result {
	r := s.updateActivity(ctx, "delete_activity", id, func(q storage.Querier, a *model.Activity) error {
		a.SyncStatus = model.SyncDeleted
		_, err := draft.PurgeRecords(ctx, q, model.FormActivity, []int64{a.ID})
		return err
	})
	if r.Success {
		r.Message = "Activity deleted"
	}
	return r
}
