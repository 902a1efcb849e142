package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// TaskRepo provides operations for tasks and subtasks.
type TaskRepo struct {
	q Querier
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, remote_id, account_id, name, description, status, priority, project_id, sub_project_id,
	parent_id, assignee_ids, stage_id, personal_stage_id, start_date, end_date, deadline, planned_hours,
	has_draft, sync_status, last_modified`

// Create inserts a task. A task without a remote id gets a provisional one.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	t.LastModified = time.Now()
	id, remoteID, err := insertSyncable(ctx, r.q, "tasks", t.RemoteID, `
		INSERT INTO tasks (remote_id, account_id, name, description, status, priority, project_id, sub_project_id,
			parent_id, assignee_ids, stage_id, personal_stage_id, start_date, end_date, deadline, planned_hours,
			has_draft, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RemoteID, t.AccountID, t.Name, t.Description, t.Status, t.Priority, t.ProjectID, t.SubProjectID,
		t.ParentID, t.AssigneeIDs, t.StageID, t.PersonalStageID, nullDate(t.StartDate), nullDate(t.EndDate),
		nullDate(t.Deadline), t.PlannedHours, boolInt(t.HasDraft), string(t.SyncStatus), mustTime(t.LastModified),
	)
	if err != nil {
		return err
	}
	t.ID = id
	t.RemoteID = remoteID
	return nil
}

// Update writes every editable column of a task.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	t.LastModified = time.Now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, description = ?, status = ?, priority = ?, project_id = ?, sub_project_id = ?, parent_id = ?,
			assignee_ids = ?, stage_id = ?, personal_stage_id = ?, start_date = ?, end_date = ?, deadline = ?,
			planned_hours = ?, sync_status = ?, last_modified = ?
		WHERE id = ?`,
		t.Name, t.Description, t.Status, t.Priority, t.ProjectID, t.SubProjectID, t.ParentID,
		t.AssigneeIDs, t.StageID, t.PersonalStageID, nullDate(t.StartDate), nullDate(t.EndDate), nullDate(t.Deadline),
		t.PlannedHours, string(t.SyncStatus), mustTime(t.LastModified), t.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Get retrieves a task by local id.
func (r *TaskRepo) Get(ctx context.Context, id int64) (*model.Task, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return oneTask(row)
}

// GetByRemoteID retrieves a task by remote id within an account.
func (r *TaskRepo) GetByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Task, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE remote_id = ? AND account_id = ?`,
		int64(remoteID), accountID)
	return oneTask(row)
}

// List returns the non-deleted tasks of an account, or of every account.
func (r *TaskRepo) List(ctx context.Context, scope int64) ([]*model.Task, error) {
	var args []any
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + scopeClause("account_id", scope, &args) +
		` AND sync_status <> 'deleted' ORDER BY account_id, id`
	return r.list(ctx, query, args...)
}

// ListByProject returns the non-deleted tasks directly under a project or sub-project.
func (r *TaskRepo) ListByProject(ctx context.Context, projectRemoteID model.Ref, accountID int64) ([]*model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE (project_id = ? OR sub_project_id = ?) AND account_id = ? AND sync_status <> 'deleted' ORDER BY id`,
		int64(projectRemoteID), int64(projectRemoteID), accountID)
}

// Children returns the live subtasks of a task.
func (r *TaskRepo) Children(ctx context.Context, parentRemoteID model.Ref, accountID int64) ([]*model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE parent_id = ? AND account_id = ? AND sync_status <> 'deleted' ORDER BY id`,
		int64(parentRemoteID), accountID)
}

// MarkDeleted soft-deletes a task.
func (r *TaskRepo) MarkDeleted(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE tasks SET sync_status = 'deleted', last_modified = ? WHERE id = ?`,
		mustTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]*model.Task, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func oneTask(row *sql.Row) (*model.Task, error) {
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var start, end, deadline sql.NullString
	var hasDraft int
	var status, modified string
	if err := s.Scan(&t.ID, &t.RemoteID, &t.AccountID, &t.Name, &t.Description, &t.Status, &t.Priority,
		&t.ProjectID, &t.SubProjectID, &t.ParentID, &t.AssigneeIDs, &t.StageID, &t.PersonalStageID,
		&start, &end, &deadline, &t.PlannedHours, &hasDraft, &status, &modified); err != nil {
		return nil, err
	}
	var err error
	if t.StartDate, err = parseNullableDate(start); err != nil {
		return nil, err
	}
	if t.EndDate, err = parseNullableDate(end); err != nil {
		return nil, err
	}
	if t.Deadline, err = parseNullableDate(deadline); err != nil {
		return nil, err
	}
	if t.LastModified, err = parseRequiredTime(modified); err != nil {
		return nil, err
	}
	t.HasDraft = hasDraft == 1
	t.SyncStatus = model.SyncStatus(status)
	return &t, nil
}
