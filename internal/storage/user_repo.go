package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// UserRepo provides operations for backend users.
type UserRepo struct {
	q Querier
}

// NewUserRepo creates a new user repository.
func NewUserRepo(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, remote_id, account_id, name, login, email`

// Create inserts a user. A user without a remote id gets a provisional one.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	id, remoteID, err := insertSyncable(ctx, r.q, "users", u.RemoteID, `
		INSERT INTO users (remote_id, account_id, name, login, email, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, '', ?)`,
		u.RemoteID, u.AccountID, u.Name, u.Login, u.Email, mustTime(time.Now()),
	)
	if err != nil {
		return err
	}
	u.ID = id
	u.RemoteID = remoteID
	return nil
}

// GetByRemoteID retrieves a user by remote id within an account.
func (r *UserRepo) GetByRemoteID(ctx context.Context, remoteID model.Ref, accountID int64) (*model.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE remote_id = ? AND account_id = ?`,
		int64(remoteID), accountID)
	var u model.User
	if err := row.Scan(&u.ID, &u.RemoteID, &u.AccountID, &u.Name, &u.Login, &u.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns users of one account, or every account for AllAccounts.
func (r *UserRepo) List(ctx context.Context, scope int64) ([]*model.User, error) {
	var args []any
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + scopeClause("account_id", scope, &args) +
		` ORDER BY account_id, name`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.RemoteID, &u.AccountID, &u.Name, &u.Login, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// AccountOf returns the accounts in which a user remote id exists.
func (r *UserRepo) AccountOf(ctx context.Context, remoteID int64) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT account_id FROM users WHERE remote_id = ?`, remoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
