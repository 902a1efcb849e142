// Package account manages connected accounts and the default account scope.
//
// Exactly one account carries the default flag at a time. When none does,
// the reserved local account is the default.
package account

import (
	"context"
	"fmt"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/validate"
)

// Manager creates, lists and removes accounts.
type Manager struct {
	db *storage.DB
}

// New creates an account manager.
func New(db *storage.DB) *Manager {
	return &Manager{db: db}
}

// CreateResult is the outcome of Create.
type CreateResult struct {
	model.Result
	AccountID int64 `json:"account_id,omitempty"`
	// DuplicateType is "name" or "connection" when an equal account exists.
	DuplicateType string `json:"duplicate_type,omitempty"`
}

// DeleteResult is the outcome of Delete.
type DeleteResult struct {
	model.Result
	Removed map[string]int64 `json:"removed,omitempty"`
}

func fail(ctx context.Context, op string, err error, args ...any) model.Result {
	if errors.KindOf(err) == errors.KindUnknown {
		err = errors.WithStack(errors.Storage(op, err), "account."+op)
	}
	logging.LogFailure(ctx, op, err, args...)
	return model.Fail(err)
}

// Create adds an account after checking for duplicates by name and by the
// (server, database, username) triple. makeDefault moves the default flag
// to the new account in the same transaction.
func (m *Manager) Create(ctx context.Context, a *model.Account, makeDefault bool) CreateResult {
	a.Name = validate.SanitizeName(a.Name)
	if err := validate.Account(a); err != nil {
		return CreateResult{Result: fail(ctx, "create_account", err)}
	}

	var dup string
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewAccountRepo(q)
		var err error
		if dup, err = repo.FindDuplicate(ctx, a); err != nil || dup != "" {
			return err
		}
		a.IsDefault = false
		if _, err := repo.Create(ctx, a); err != nil {
			return err
		}
		if makeDefault {
			if err := repo.ClearDefault(ctx); err != nil {
				return err
			}
			if err := repo.MarkDefault(ctx, a.ID); err != nil {
				return err
			}
			a.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return CreateResult{Result: fail(ctx, "create_account", err, "name", a.Name)}
	}

	if dup != "" {
		err := fmt.Errorf("%w: same %s", errors.ErrDuplicateAccount, dup)
		logging.LogFailure(ctx, "create_account", err, "duplicate", dup)
		msg := "An account with this name already exists"
		if dup == storage.DuplicateConnection {
			msg = "An account for this server, database and user already exists"
		}
		return CreateResult{
			Result:        model.Result{Success: false, Message: msg, Kind: errors.KindConstraint.String()},
			DuplicateType: dup,
		}
	}

	logging.LogOperation(ctx, "create_account", logging.KeyAccount, a.ID, "default", a.IsDefault)
	return CreateResult{Result: model.OK("Account created"), AccountID: a.ID}
}

// List returns every account, the local account first.
func (m *Manager) List(ctx context.Context) ([]*model.Account, error) {
	accounts, err := storage.NewAccountRepo(m.db).List(ctx)
	if err != nil {
		return nil, errors.Storage("list_accounts", err)
	}
	return accounts, nil
}

// Get returns one account.
func (m *Manager) Get(ctx context.Context, id int64) (*model.Account, error) {
	a, err := storage.NewAccountRepo(m.db).Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Storage("get_account", err)
	}
	return a, nil
}

// DefaultID returns the default account id, or the local account when no
// account is marked. Storage failures also fall back to the local account.
func (m *Manager) DefaultID(ctx context.Context) int64 {
	id, err := storage.NewAccountRepo(m.db).DefaultID(ctx)
	if err != nil {
		logging.LogFailure(ctx, "default_account", err)
		return model.LocalAccountID
	}
	return id
}

// SetDefault makes id the only default account. Clearing the old flag and
// setting the new one happen in one transaction.
func (m *Manager) SetDefault(ctx context.Context, id int64) model.Result {
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewAccountRepo(q)
		if _, err := repo.Get(ctx, id); err != nil {
			if errors.IsNotFound(err) {
				return errors.ErrAccountNotFound
			}
			return err
		}
		if err := repo.ClearDefault(ctx); err != nil {
			return err
		}
		if err := repo.MarkDefault(ctx, id); err != nil {
			return err
		}
		n, err := repo.CountDefault(ctx)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%d default accounts after marking account %d", n, id)
		}
		return nil
	})
	if err != nil {
		return fail(ctx, "set_default_account", err, logging.KeyAccount, id)
	}
	logging.LogOperation(ctx, "set_default_account", logging.KeyAccount, id)
	return model.OK("Default account updated")
}

// Delete removes an account and every row that belongs to it. The local
// account cannot be removed. If the deleted account was the default, the
// local account becomes the default.
func (m *Manager) Delete(ctx context.Context, id int64) DeleteResult {
	if id == model.LocalAccountID {
		return DeleteResult{Result: fail(ctx, "delete_account", errors.ErrLocalAccount)}
	}

	var removed map[string]int64
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewAccountRepo(q)
		a, err := repo.Get(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				return errors.ErrAccountNotFound
			}
			return err
		}
		if removed, err = repo.DeleteCascade(ctx, id); err != nil {
			return err
		}
		if a.IsDefault {
			return repo.MarkDefault(ctx, model.LocalAccountID)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{Result: fail(ctx, "delete_account", err, logging.KeyAccount, id)}
	}

	logging.LogOperation(ctx, "delete_account", logging.KeyAccount, id)
	return DeleteResult{Result: model.OK("Account deleted"), Removed: removed}
}

// Scope resolves the account scope of a command. A nil request means the
// default account; model.AllAccounts is passed through.
func (m *Manager) Scope(ctx context.Context, requested *int64) int64 {
	if requested == nil {
		return m.DefaultID(ctx)
	}
	return *requested
}
