package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// ProjectUpdateRepo provides operations for project status updates.
type ProjectUpdateRepo struct {
	q Querier
}

// NewProjectUpdateRepo creates a new project update repository.
func NewProjectUpdateRepo(q Querier) *ProjectUpdateRepo {
	return &ProjectUpdateRepo{q: q}
}

const updateColumns = `id, remote_id, account_id, project_id, name, status, progress, description, date,
	has_draft, sync_status, last_modified`

// Create inserts a project update.
func (r *ProjectUpdateRepo) Create(ctx context.Context, u *model.ProjectUpdate) error {
	u.LastModified = time.Now()
	id, remoteID, err := insertSyncable(ctx, r.q, "project_updates", u.RemoteID, `
		INSERT INTO project_updates (remote_id, account_id, project_id, name, status, progress, description, date,
			has_draft, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.RemoteID, u.AccountID, u.ProjectID, u.Name, u.Status, u.Progress, u.Description, nullDate(u.Date),
		boolInt(u.HasDraft), string(u.SyncStatus), mustTime(u.LastModified),
	)
	if err != nil {
		return err
	}
	u.ID = id
	u.RemoteID = remoteID
	return nil
}

// GetByRemoteID retrieves an update by remote id within an account.
func (r *ProjectUpdateRepo) GetByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.ProjectUpdate, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+updateColumns+` FROM project_updates WHERE remote_id = ? AND account_id = ?`,
		int64(remoteID), accountID)
	u, err := scanUpdate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListByProject returns the live updates of a project, newest first.
func (r *ProjectUpdateRepo) ListByProject(ctx context.Context, projectRemoteID model.Ref, accountID int64) ([]*model.ProjectUpdate, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+updateColumns+` FROM project_updates
		WHERE project_id = ? AND account_id = ? AND sync_status <> 'deleted'
		ORDER BY date DESC, id DESC`, int64(projectRemoteID), accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ProjectUpdate
	for rows.Next() {
		u, scanErr := scanUpdate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUpdate(s scanner) (*model.ProjectUpdate, error) {
	var u model.ProjectUpdate
	var date sql.NullString
	var hasDraft int
	var status, modified string
	if err := s.Scan(&u.ID, &u.RemoteID, &u.AccountID, &u.ProjectID, &u.Name, &u.Status, &u.Progress,
		&u.Description, &date, &hasDraft, &status, &modified); err != nil {
		return nil, err
	}
	var err error
	if u.Date, err = parseNullableDate(date); err != nil {
		return nil, err
	}
	if u.LastModified, err = parseRequiredTime(modified); err != nil {
		return nil, err
	}
	u.HasDraft = hasDraft == 1
	u.SyncStatus = model.SyncStatus(status)
	return &u, nil
}
