package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// NotificationRepo provides operations for local notifications.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	var recordID any
	if n.RecordID != nil {
		recordID = *n.RecordID
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO notifications (account_id, kind, title, body, record_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.AccountID, n.Kind, n.Title, n.Body, recordID, boolInt(n.Read), mustTime(n.CreatedAt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// List returns notifications newest first.
func (r *NotificationRepo) List(ctx context.Context, scope int64, unreadOnly bool) ([]*model.Notification, error) {
	var args []any
	query := `SELECT id, account_id, kind, title, body, record_id, read, created_at FROM notifications WHERE ` +
		scopeClause("account_id", scope, &args)
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		var n model.Notification
		var recordID sql.NullInt64
		var read int
		var created string
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Title, &n.Body, &recordID, &read, &created); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = parseRequiredTime(created); err != nil {
			return nil, err
		}
		if recordID.Valid {
			id := recordID.Int64
			n.RecordID = &id
		}
		n.Read = read == 1
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}
