// Package storage provides the database layer for timesheets.
//
// Relational data lives in an embedded SQLite database. The single active
// timer is kept separately in a badger runtime state store (see state.go).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"

	apperrors "github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

const (
	// AppName is the application name used for data directories.
	AppName = "timesheets"

	// MemoryPath selects an in-memory database.
	MemoryPath = ":memory:"

	sqliteTimeLayout = time.RFC3339Nano
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = apperrors.ErrNotFound

// Querier is satisfied by *sql.DB, *sql.Tx and *DB.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the SQLite connection.
type DB struct {
	db   *sql.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database file path. Empty string or ":memory:" uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default database path under the XDG base directories.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// Open opens or creates a database, applies migrations and ensures the local account.
func Open(ctx context.Context, opts Options) (*DB, error) {
	path := opts.Path
	inMemory := opts.InMemory || path == "" || path == MemoryPath

	dsn := path
	if inMemory {
		path = MemoryPath
		dsn = MemoryPath
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Each in-memory connection is its own database, and the store has a
	// single writer anyway.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := MigrateUp(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	d := &DB{db: sqlDB, path: path}
	if err := d.ensureLocalAccount(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// ensureLocalAccount makes sure account 0 and its local user exist.
func (d *DB) ensureLocalAccount(ctx context.Context) error {
	now := mustTime(time.Now())
	if _, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO accounts (id, name, server_link, database_name, username, api_key, is_default, created_at)
		VALUES (?, ?, ?, '', '', '', 0, ?)`,
		model.LocalAccountID, model.LocalAccountName, model.LocalAccountLink, now,
	); err != nil {
		return fmt.Errorf("ensure local account: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `
		INSERT INTO users (remote_id, account_id, name, login, email, sync_status, last_modified)
		SELECT NULL, ?, ?, 'local', '', '', ?
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE account_id = ?)`,
		model.LocalAccountID, model.LocalUserName, now, model.LocalAccountID,
	); err != nil {
		return fmt.Errorf("ensure local user: %w", err)
	}
	return assignProvisionalIDs(ctx, d.db, "users")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database path, or ":memory:".
func (d *DB) Path() string {
	return d.path
}

// SQL returns the underlying *sql.DB for advanced operations.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// ExecContext implements Querier.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

// QueryContext implements Querier.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRowContext implements Querier.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
