package records

import (
	"context"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Stages lists the stages of one kind.
func (s *Service) Stages(ctx context.Context, kind model.StageKind, scope int64) ([]*model.Stage, error) {
	stages, err := storage.NewStageRepo(s.db).List(ctx, kind, scope)
	if err != nil {
		return nil, errors.Storage("list_stages", err)
	}
	return stages, nil
}

// CreateStage adds a local project or task stage.
func (s *Service) CreateStage(ctx context.Context, st *model.Stage) CreateResult {
	st.Name = validate.SanitizeName(st.Name)
	if err := validate.Name("stage", st.Name); err != nil {
		return CreateResult{Result: fail(ctx, "create_stage", err)}
	}
	if st.Kind != model.StageKindProject && st.Kind != model.StageKindTask {
		err := errors.NewUserErrorWithField("kind", string(st.Kind), "Unknown stage kind", "Use project or task")
		return CreateResult{Result: fail(ctx, "create_stage", err)}
	}
	st.RemoteID = localRemoteID(st.RemoteID)
	st.SyncStatus = model.SyncNew
	if err := storage.NewStageRepo(s.db).Create(ctx, st); err != nil {
		return CreateResult{Result: fail(ctx, "create_stage", err, logging.KeyAccount, st.AccountID)}
	}
	logging.LogOperation(ctx, "create_stage", "stage_id", st.RemoteID, "kind", st.Kind, "fold", st.Fold)
	return created("Stage created", st.ID, st.RemoteID)
}

// Users lists the users known to a scope.
func (s *Service) Users(ctx context.Context, scope int64) ([]*model.User, error) {
	users, err := storage.NewUserRepo(s.db).List(ctx, scope)
	if err != nil {
		return nil, errors.Storage("list_users", err)
	}
	return users, nil
}

// CreateUser adds a user to an account.
func (s *Service) CreateUser(ctx context.Context, u *model.User) CreateResult {
	u.Name = validate.SanitizeName(u.Name)
	if err := validate.Name("user", u.Name); err != nil {
		return CreateResult{Result: fail(ctx, "create_user", err)}
	}
	u.RemoteID = localRemoteID(u.RemoteID)
	if err := storage.NewUserRepo(s.db).Create(ctx, u); err != nil {
		return CreateResult{Result: fail(ctx, "create_user", err, logging.KeyAccount, u.AccountID)}
	}
	logging.LogOperation(ctx, "create_user", "user_id", u.RemoteID, logging.KeyAccount, u.AccountID)
	return created("User created", u.ID, u.RemoteID)
}

// Notifications lists notifications, newest first.
func (s *Service) Notifications(ctx context.Context, scope int64, unreadOnly bool) ([]*model.Notification, error) {
	list, err := storage.NewNotificationRepo(s.db).List(ctx, scope, unreadOnly)
	if err != nil {
		return nil, errors.Storage("list_notifications", err)
	}
	return list, nil
}

// MarkNotificationRead flags a notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id int64) model.Result {
	if err := storage.NewNotificationRepo(s.db).MarkRead(ctx, id); err != nil {
		return fail(ctx, "read_notification", err, "notification_id", id)
	}
	return model.OK("Notification marked as read")
}

// ProjectUpdates lists the updates posted on a project, newest first.
func (s *Service) ProjectUpdates(ctx context.Context, projectID int64) ([]*model.ProjectUpdate, error) {
	repos := storage.NewRepos(s.db)
	p, err := repos.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, notFound(err, errors.ErrProjectNotFound)
	}
	updates, err := repos.Updates.ListByProject(ctx, p.RemoteID, p.AccountID)
	if err != nil {
		return nil, errors.Storage("list_project_updates", err)
	}
	return updates, nil
}

// CreateProjectUpdate posts a status update on a project given by remote id.
func (s *Service) CreateProjectUpdate(ctx context.Context, u *model.ProjectUpdate) CreateResult {
	u.Name = validate.SanitizeName(u.Name)
	u.Description = validate.SanitizeNote(u.Description)
	if err := validate.Name("update", u.Name); err != nil {
		return CreateResult{Result: fail(ctx, "create_project_update", err)}
	}
	if err := validate.Progress(u.Progress); err != nil {
		return CreateResult{Result: fail(ctx, "create_project_update", err)}
	}
	if u.Status == "" {
		u.Status = "on_track"
	}
	if u.Date == nil {
		today := s.today()
		u.Date = &today
	}

	err := s.db.WithTx(ctx, func(q storage.Querier) error {
		repos := storage.NewRepos(q)
		if repos.IDs.LocalID(ctx, storage.EntityProject, u.ProjectID, u.AccountID) == storage.NotFoundID {
			return errors.ErrProjectNotFound
		}
		u.RemoteID = localRemoteID(u.RemoteID)
		u.SyncStatus = model.SyncNew
		return repos.Updates.Create(ctx, u)
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_project_update", err, logging.KeyProject, u.ProjectID)}
	}
	logging.LogOperation(ctx, "create_project_update", logging.KeyProject, u.ProjectID, "progress", u.Progress)
	return created("Project update posted", u.ID, u.RemoteID)
}

// ProjectHours returns the rolled-up spent hours of every project in scope,
// keyed by local project id.
func (s *Service) ProjectHours(ctx context.Context, scope int64) (map[int64]float64, error) {
	views, err := s.Projects(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]float64, len(views))
	for _, v := range views {
		out[v.ID] = v.SpentHours
	}
	return out, nil
}
