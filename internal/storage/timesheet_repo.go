package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// TimesheetRepo provides operations for timesheet lines.
type TimesheetRepo struct {
	q Querier
}

// NewTimesheetRepo creates a new timesheet repository.
func NewTimesheetRepo(q Querier) *TimesheetRepo {
	return &TimesheetRepo{q: q}
}

const timesheetColumns = `id, remote_id, account_id, name, project_id, sub_project_id, task_id, sub_task_id, user_id,
	quadrant, unit_amount, record_date, timer_state, has_draft, sync_status, last_modified`

// Create inserts a timesheet line. A line without a remote id gets a provisional one.
func (r *TimesheetRepo) Create(ctx context.Context, t *model.TimesheetEntry) error {
	t.LastModified = time.Now()
	if t.RecordDate.IsZero() {
		t.RecordDate = t.LastModified
	}
	id, remoteID, err := insertSyncable(ctx, r.q, "timesheets", t.RemoteID, `
		INSERT INTO timesheets (remote_id, account_id, name, project_id, sub_project_id, task_id, sub_task_id, user_id,
			quadrant, unit_amount, record_date, timer_state, has_draft, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RemoteID, t.AccountID, t.Name, t.ProjectID, t.SubProjectID, t.TaskID, t.SubTaskID, t.UserID,
		int(t.Quadrant), t.UnitAmount, mustDate(t.RecordDate), string(t.TimerMark), boolInt(t.HasDraft),
		string(t.SyncStatus), mustTime(t.LastModified),
	)
	if err != nil {
		return err
	}
	t.ID = id
	t.RemoteID = remoteID
	return nil
}

// Update writes every editable column of a timesheet line.
func (r *TimesheetRepo) Update(ctx context.Context, t *model.TimesheetEntry) error {
	t.LastModified = time.Now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE timesheets
		SET name = ?, project_id = ?, sub_project_id = ?, task_id = ?, sub_task_id = ?, user_id = ?, quadrant = ?,
			unit_amount = ?, record_date = ?, timer_state = ?, sync_status = ?, last_modified = ?
		WHERE id = ?`,
		t.Name, t.ProjectID, t.SubProjectID, t.TaskID, t.SubTaskID, t.UserID, int(t.Quadrant),
		t.UnitAmount, mustDate(t.RecordDate), string(t.TimerMark), string(t.SyncStatus), mustTime(t.LastModified), t.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// SetDuration persists accrued hours and the timer mark of a line.
func (r *TimesheetRepo) SetDuration(ctx context.Context, id int64, hours float64, mark model.TimerMark) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE timesheets SET unit_amount = ?, timer_state = ?, last_modified = ? WHERE id = ?`,
		hours, string(mark), mustTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// SetSyncStatus updates the sync marker of a line.
func (r *TimesheetRepo) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE timesheets SET sync_status = ?, last_modified = ? WHERE id = ?`,
		string(status), mustTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Get retrieves a timesheet line by local id.
func (r *TimesheetRepo) Get(ctx context.Context, id int64) (*model.TimesheetEntry, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+timesheetColumns+` FROM timesheets WHERE id = ?`, id)
	t, err := scanTimesheet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns the non-deleted lines of an account, newest first.
func (r *TimesheetRepo) List(ctx context.Context, scope int64) ([]*model.TimesheetEntry, error) {
	var args []any
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE ` + scopeClause("account_id", scope, &args) +
		` AND sync_status <> 'deleted' ORDER BY record_date DESC, id DESC`
	return r.list(ctx, query, args...)
}

// ListForTask returns live lines logged against a task as task or subtask.
func (r *TimesheetRepo) ListForTask(ctx context.Context, taskRemoteID model.Ref, accountID int64) ([]*model.TimesheetEntry, error) {
	return r.list(ctx, `SELECT `+timesheetColumns+` FROM timesheets
		WHERE (task_id = ? OR sub_task_id = ?) AND account_id = ? AND sync_status <> 'deleted' ORDER BY id`,
		int64(taskRemoteID), int64(taskRemoteID), accountID)
}

// SoftDeleteForTask marks every line referencing a task as deleted and
// returns the local ids it touched.
func (r *TimesheetRepo) SoftDeleteForTask(ctx context.Context, taskRemoteID model.Ref, accountID int64) ([]int64, error) {
	lines, err := r.ListForTask(ctx, taskRemoteID, accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, err := r.q.ExecContext(ctx,
			`UPDATE timesheets SET sync_status = 'deleted', last_modified = ? WHERE id = ?`,
			mustTime(time.Now()), line.ID); err != nil {
			return nil, err
		}
		ids = append(ids, line.ID)
	}
	return ids, nil
}

// MarkDeleted soft-deletes a line.
func (r *TimesheetRepo) MarkDeleted(ctx context.Context, id int64) error {
	return r.SetSyncStatus(ctx, id, model.SyncDeleted)
}

// HoursByProject sums live hours per project remote id, counting each line
// against its sub-project when it has one.
func (r *TimesheetRepo) HoursByProject(ctx context.Context, accountID int64) (map[model.Ref]float64, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT CASE WHEN sub_project_id IS NOT NULL AND sub_project_id NOT IN (0, -1) THEN sub_project_id ELSE project_id END AS pid,
			SUM(unit_amount)
		FROM timesheets
		WHERE account_id = ? AND sync_status <> 'deleted'
		GROUP BY pid`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Ref]float64)
	for rows.Next() {
		var pid model.Ref
		var hours float64
		if err := rows.Scan(&pid, &hours); err != nil {
			return nil, err
		}
		if pid.IsSet() {
			out[pid] += hours
		}
	}
	return out, rows.Err()
}

func (r *TimesheetRepo) list(ctx context.Context, query string, args ...any) ([]*model.TimesheetEntry, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TimesheetEntry
	for rows.Next() {
		t, scanErr := scanTimesheet(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTimesheet(s scanner) (*model.TimesheetEntry, error) {
	var t model.TimesheetEntry
	var quadrant, hasDraft int
	var recordDate, mark, status, modified string
	if err := s.Scan(&t.ID, &t.RemoteID, &t.AccountID, &t.Name, &t.ProjectID, &t.SubProjectID, &t.TaskID,
		&t.SubTaskID, &t.UserID, &quadrant, &t.UnitAmount, &recordDate, &mark, &hasDraft, &status, &modified); err != nil {
		return nil, err
	}
	var err error
	if t.RecordDate, err = parseDate(recordDate); err != nil {
		return nil, err
	}
	if t.LastModified, err = parseRequiredTime(modified); err != nil {
		return nil, err
	}
	t.Quadrant = model.Quadrant(quadrant)
	t.TimerMark = model.TimerMark(mark)
	t.HasDraft = hasDraft == 1
	t.SyncStatus = model.SyncStatus(status)
	return &t, nil
}
