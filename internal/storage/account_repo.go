package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// Duplicate kinds reported by FindDuplicate.
const (
	DuplicateName       = "name"
	DuplicateConnection = "connection"
)

// perAccountTables lists every table whose rows belong to an account.
var perAccountTables = []string{
	"drafts",
	"notifications",
	"attachments",
	"project_updates",
	"activities",
	"activity_types",
	"timesheets",
	"tasks",
	"task_stages",
	"projects",
	"project_stages",
	"users",
}

// AccountRepo provides operations for accounts.
type AccountRepo struct {
	q Querier
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `id, name, server_link, database_name, username, api_key, is_default, created_at`

// Create inserts a new account and returns its id.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (name, server_link, database_name, username, api_key, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.ServerLink, a.DatabaseName, a.Username, a.APIKey, boolInt(a.IsDefault), mustTime(a.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, nil
}

// Get retrieves an account by id.
func (r *AccountRepo) Get(ctx context.Context, id int64) (*model.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns all accounts, the local account first.
func (r *AccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindDuplicate reports whether an account with the same name, or the same
// (server link, database, username) triple, already exists.
// It returns "" when there is no duplicate.
func (r *AccountRepo) FindDuplicate(ctx context.Context, a *model.Account) (string, error) {
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE name = ? COLLATE NOCASE`, a.Name,
	).Scan(&n); err != nil {
		return "", err
	}
	if n > 0 {
		return DuplicateName, nil
	}

	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM accounts
		WHERE server_link = ? AND database_name = ? AND username = ?`,
		a.ServerLink, a.DatabaseName, a.Username,
	).Scan(&n); err != nil {
		return "", err
	}
	if n > 0 {
		return DuplicateConnection, nil
	}
	return "", nil
}

// DefaultID returns the id of the default account, or the local account if none is marked.
func (r *AccountRepo) DefaultID(ctx context.Context) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE is_default = 1 ORDER BY id LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LocalAccountID, nil
	}
	if err != nil {
		return model.LocalAccountID, err
	}
	return id, nil
}

// ClearDefault removes the default flag from every account.
func (r *AccountRepo) ClearDefault(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `UPDATE accounts SET is_default = 0 WHERE is_default <> 0`)
	return err
}

// MarkDefault sets the default flag on one account.
func (r *AccountRepo) MarkDefault(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `UPDATE accounts SET is_default = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// CountDefault returns how many accounts carry the default flag.
func (r *AccountRepo) CountDefault(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE is_default = 1`).Scan(&n)
	return n, err
}

// DeleteCascade removes an account and every row that belongs to it.
// It should run inside a transaction.
func (r *AccountRepo) DeleteCascade(ctx context.Context, id int64) (map[string]int64, error) {
	removed := make(map[string]int64, len(perAccountTables))
	for _, table := range perAccountTables {
		res, err := r.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE account_id = ?`, table), id)
		if err != nil {
			return nil, fmt.Errorf("delete from %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		removed[table] = n
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return removed, nil
}

func scanAccount(s scanner) (*model.Account, error) {
	var a model.Account
	var isDefault int
	var created string
	if err := s.Scan(&a.ID, &a.Name, &a.ServerLink, &a.DatabaseName, &a.Username, &a.APIKey, &isDefault, &created); err != nil {
		return nil, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return nil, err
	}
	a.IsDefault = isDefault == 1
	a.CreatedAt = createdAt
	return &a, nil
}
