package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// ActivityRepo provides operations for activities and activity types.
type ActivityRepo struct {
	q Querier
}

// NewActivityRepo creates a new activity repository.
func NewActivityRepo(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

const activityColumns = `a.id, a.remote_id, a.account_id, a.summary, a.note, a.activity_type_id, a.user_id, a.due_date,
	a.res_model, a.res_id, a.res_name, a.done, a.has_draft, a.sync_status, a.last_modified`

// Create inserts an activity. An activity without a remote id gets a provisional one.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	a.LastModified = time.Now()
	id, remoteID, err := insertSyncable(ctx, r.q, "activities", a.RemoteID, `
		INSERT INTO activities (remote_id, account_id, summary, note, activity_type_id, user_id, due_date,
			res_model, res_id, res_name, done, has_draft, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RemoteID, a.AccountID, a.Summary, a.Note, a.ActivityTypeID, a.UserID, nullDate(a.DueDate),
		a.ResModel, a.ResID, a.ResName, boolInt(a.Done), boolInt(a.HasDraft), string(a.SyncStatus), mustTime(a.LastModified),
	)
	if err != nil {
		return err
	}
	a.ID = id
	a.RemoteID = remoteID
	return nil
}

// Update writes every editable column of an activity.
func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) error {
	a.LastModified = time.Now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE activities
		SET summary = ?, note = ?, activity_type_id = ?, user_id = ?, due_date = ?, res_model = ?, res_id = ?,
			res_name = ?, done = ?, sync_status = ?, last_modified = ?
		WHERE id = ?`,
		a.Summary, a.Note, a.ActivityTypeID, a.UserID, nullDate(a.DueDate), a.ResModel, a.ResID,
		a.ResName, boolInt(a.Done), string(a.SyncStatus), mustTime(a.LastModified), a.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Get retrieves an activity by local id.
func (r *ActivityRepo) Get(ctx context.Context, id int64) (*model.Activity, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities a WHERE a.id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns live, not yet done activities ordered by due date.
// includeDone widens the list to completed activities.
func (r *ActivityRepo) List(ctx context.Context, scope int64, includeDone bool) ([]*model.Activity, error) {
	var args []any
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE ` + scopeClause("a.account_id", scope, &args) +
		` AND a.sync_status <> 'deleted'`
	if !includeDone {
		query += ` AND a.done = 0`
	}
	query += ` ORDER BY a.due_date IS NULL, a.due_date, a.id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Activity
	for rows.Next() {
		a, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateType inserts an activity type.
func (r *ActivityRepo) CreateType(ctx context.Context, t *model.ActivityType) error {
	t.LastModified = time.Now()
	id, remoteID, err := insertSyncable(ctx, r.q, "activity_types", t.RemoteID, `
		INSERT INTO activity_types (remote_id, account_id, name, icon, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.RemoteID, t.AccountID, t.Name, t.Icon, string(t.SyncStatus), mustTime(t.LastModified),
	)
	if err != nil {
		return err
	}
	t.ID = id
	t.RemoteID = remoteID
	return nil
}

// TypeNames maps activity type remote ids to names for an account.
func (r *ActivityRepo) TypeNames(ctx context.Context, accountID int64) (map[model.Ref]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT remote_id, name FROM activity_types WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Ref]string)
	for rows.Next() {
		var id model.Ref
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func scanActivity(s scanner) (*model.Activity, error) {
	var a model.Activity
	var due sql.NullString
	var done, hasDraft int
	var status, modified string
	if err := s.Scan(&a.ID, &a.RemoteID, &a.AccountID, &a.Summary, &a.Note, &a.ActivityTypeID, &a.UserID, &due,
		&a.ResModel, &a.ResID, &a.ResName, &done, &hasDraft, &status, &modified); err != nil {
		return nil, err
	}
	var err error
	if a.DueDate, err = parseNullableDate(due); err != nil {
		return nil, err
	}
	if a.LastModified, err = parseRequiredTime(modified); err != nil {
		return nil, err
	}
	a.Done = done == 1
	a.HasDraft = hasDraft == 1
	a.SyncStatus = model.SyncStatus(status)
	return &a, nil
}
