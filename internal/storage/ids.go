package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
)

// NotFoundID is returned by the resolver when no row matches.
const NotFoundID int64 = -1

// Entity names a syncable table for identifier resolution.
type Entity string

const (
	EntityProject       Entity = "projects"
	EntityTask          Entity = "tasks"
	EntityTimesheet     Entity = "timesheets"
	EntityActivity      Entity = "activities"
	EntityActivityType  Entity = "activity_types"
	EntityProjectUpdate Entity = "project_updates"
	EntityProjectStage  Entity = "project_stages"
	EntityTaskStage     Entity = "task_stages"
	EntityUser          Entity = "users"
	EntityAttachment    Entity = "attachments"
)

func (e Entity) valid() bool {
	switch e {
	case EntityProject, EntityTask, EntityTimesheet, EntityActivity, EntityActivityType,
		EntityProjectUpdate, EntityProjectStage, EntityTaskStage, EntityUser, EntityAttachment:
		return true
	}
	return false
}

// Resolver maps between local ids and remote ids within an account.
// Lookups never fail: a miss or a storage error yields the not-found sentinel.
type Resolver struct {
	q Querier
}

// NewResolver creates an identifier resolver.
func NewResolver(q Querier) *Resolver {
	return &Resolver{q: q}
}

// LocalID returns the local id of the row with remoteID in accountID, or NotFoundID.
func (r *Resolver) LocalID(ctx context.Context, entity Entity, remoteID model.Ref, accountID int64) int64 {
	if !entity.valid() || remoteID == model.Unresolved || remoteID == model.NoParent {
		return NotFoundID
	}
	var id int64
	err := r.q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE remote_id = ? AND account_id = ?`, entity),
		int64(remoteID), accountID,
	).Scan(&id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.LoggerFromContext(ctx).Warn("resolve local id failed",
				logging.KeyOperation, "resolve_local_id", "entity", string(entity), logging.KeyError, err)
		}
		return NotFoundID
	}
	return id
}

// RemoteID returns the remote id of the row with localID, or Unresolved.
func (r *Resolver) RemoteID(ctx context.Context, entity Entity, localID int64) model.Ref {
	if !entity.valid() || localID <= 0 {
		return model.Unresolved
	}
	var remote model.Ref
	err := r.q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT remote_id FROM %s WHERE id = ?`, entity), localID,
	).Scan(&remote)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.LoggerFromContext(ctx).Warn("resolve remote id failed",
				logging.KeyOperation, "resolve_remote_id", "entity", string(entity), logging.KeyError, err)
		}
		return model.Unresolved
	}
	return remote
}

// AccountOf returns the account of the row with localID, or NotFoundID.
func (r *Resolver) AccountOf(ctx context.Context, entity Entity, localID int64) int64 {
	if !entity.valid() {
		return NotFoundID
	}
	var account int64
	err := r.q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT account_id FROM %s WHERE id = ?`, entity), localID,
	).Scan(&account)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.LoggerFromContext(ctx).Warn("resolve account failed",
				logging.KeyOperation, "resolve_account", "entity", string(entity), logging.KeyError, err)
		}
		return NotFoundID
	}
	return account
}
