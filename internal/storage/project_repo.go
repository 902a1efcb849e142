package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// ProjectRepo provides operations for projects.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepo creates a new project repository.
func NewProjectRepo(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectColumns = `id, remote_id, account_id, name, description, parent_id, planned_start, planned_end,
	allocated_hours, color, stage_id, user_id, has_draft, sync_status, last_modified`

// Create inserts a project. A project without a remote id gets a provisional one.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	if p.Color == "" {
		p.Color = model.DefaultColor
	}
	p.LastModified = time.Now()
	id, remoteID, err := insertSyncable(ctx, r.q, "projects", p.RemoteID, `
		INSERT INTO projects (remote_id, account_id, name, description, parent_id, planned_start, planned_end,
			allocated_hours, color, stage_id, user_id, has_draft, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RemoteID, p.AccountID, p.Name, p.Description, p.ParentID, nullDate(p.PlannedStart), nullDate(p.PlannedEnd),
		p.AllocatedHours, p.Color, p.StageID, p.UserID, boolInt(p.HasDraft), string(p.SyncStatus), mustTime(p.LastModified),
	)
	if err != nil {
		return err
	}
	p.ID = id
	p.RemoteID = remoteID
	return nil
}

// Update writes every editable column of a project.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	p.LastModified = time.Now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?, parent_id = ?, planned_start = ?, planned_end = ?, allocated_hours = ?,
			color = ?, stage_id = ?, user_id = ?, sync_status = ?, last_modified = ?
		WHERE id = ?`,
		p.Name, p.Description, p.ParentID, nullDate(p.PlannedStart), nullDate(p.PlannedEnd), p.AllocatedHours,
		p.Color, p.StageID, p.UserID, string(p.SyncStatus), mustTime(p.LastModified), p.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Get retrieves a project by local id.
func (r *ProjectRepo) Get(ctx context.Context, id int64) (*model.Project, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return oneProject(row)
}

// GetByRemoteID retrieves a project by remote id within an account.
func (r *ProjectRepo) GetByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.Project, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE remote_id = ? AND account_id = ?`,
		int64(remoteID), accountID)
	return oneProject(row)
}

// List returns the non-deleted projects of an account, or of every account.
func (r *ProjectRepo) List(ctx context.Context, scope int64) ([]*model.Project, error) {
	var args []any
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + scopeClause("account_id", scope, &args) +
		` AND sync_status <> 'deleted' ORDER BY account_id, name COLLATE NOCASE, id`
	return r.list(ctx, query, args...)
}

// Children returns the non-deleted sub-projects of a project.
func (r *ProjectRepo) Children(ctx context.Context, parentRemoteID model.Ref, accountID int64) ([]*model.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE parent_id = ? AND account_id = ? AND sync_status <> 'deleted' ORDER BY id`,
		int64(parentRemoteID), accountID)
}

// MarkDeleted soft-deletes a project.
func (r *ProjectRepo) MarkDeleted(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE projects SET sync_status = 'deleted', last_modified = ? WHERE id = ?`,
		mustTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *ProjectRepo) list(ctx context.Context, query string, args ...any) ([]*model.Project, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Project
	for rows.Next() {
		p, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func oneProject(row *sql.Row) (*model.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProject(s scanner) (*model.Project, error) {
	var p model.Project
	var start, end sql.NullString
	var hasDraft int
	var status, modified string
	if err := s.Scan(&p.ID, &p.RemoteID, &p.AccountID, &p.Name, &p.Description, &p.ParentID, &start, &end,
		&p.AllocatedHours, &p.Color, &p.StageID, &p.UserID, &hasDraft, &status, &modified); err != nil {
		return nil, err
	}
	var err error
	if p.PlannedStart, err = parseNullableDate(start); err != nil {
		return nil, err
	}
	if p.PlannedEnd, err = parseNullableDate(end); err != nil {
		return nil, err
	}
	if p.LastModified, err = parseRequiredTime(modified); err != nil {
		return nil, err
	}
	p.HasDraft = hasDraft == 1
	p.SyncStatus = model.SyncStatus(status)
	return &p, nil
}
