package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// StageRepo provides operations for project and task stages.
type StageRepo struct {
	q Querier
}

// NewStageRepo creates a new stage repository.
func NewStageRepo(q Querier) *StageRepo {
	return &StageRepo{q: q}
}

func stageTable(kind model.StageKind) string {
	if kind == model.StageKindProject {
		return "project_stages"
	}
	return "task_stages"
}

const stageColumns = `id, remote_id, account_id, name, fold, sequence, sync_status, last_modified`

// Create inserts a stage.
func (r *StageRepo) Create(ctx context.Context, s *model.Stage) error {
	if s.Kind == "" {
		s.Kind = model.StageKindTask
	}
	s.LastModified = time.Now()
	table := stageTable(s.Kind)
	id, remoteID, err := insertSyncable(ctx, r.q, table, s.RemoteID, `
		INSERT INTO `+table+` (remote_id, account_id, name, fold, sequence, sync_status, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.RemoteID, s.AccountID, s.Name, boolInt(s.Fold), s.Sequence, string(s.SyncStatus), mustTime(s.LastModified),
	)
	if err != nil {
		return err
	}
	s.ID = id
	s.RemoteID = remoteID
	return nil
}

// GetByRemoteID retrieves a stage by remote id within an account.
func (r *StageRepo) GetByRemoteID(ctx context.Context, kind model.StageKind, remoteID model.Ref, accountID int64) (*model.Stage, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+stageColumns+` FROM `+stageTable(kind)+` WHERE remote_id = ? AND account_id = ?`,
		int64(remoteID), accountID)
	s, err := scanStage(row, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns the stages of one kind in sequence order.
func (r *StageRepo) List(ctx context.Context, kind model.StageKind, scope int64) ([]*model.Stage, error) {
	var args []any
	query := `SELECT ` + stageColumns + ` FROM ` + stageTable(kind) +
		` WHERE ` + scopeClause("account_id", scope, &args) + ` ORDER BY account_id, sequence, id`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Stage
	for rows.Next() {
		s, scanErr := scanStage(rows, kind)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStage(s scanner, kind model.StageKind) (*model.Stage, error) {
	var out model.Stage
	var fold int
	var status, modified string
	if err := s.Scan(&out.ID, &out.RemoteID, &out.AccountID, &out.Name, &fold, &out.Sequence, &status, &modified); err != nil {
		return nil, err
	}
	lm, err := parseRequiredTime(modified)
	if err != nil {
		return nil, err
	}
	out.Kind = kind
	out.Fold = fold == 1
	out.SyncStatus = model.SyncStatus(status)
	out.LastModified = lm
	return &out, nil
}
