package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

type scanner interface {
	Scan(dest ...any) error
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

// Calendar dates are stored without a zone and read back in local time.

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(model.DateLayout)
}

func mustDate(v time.Time) string {
	return v.Format(model.DateLayout)
}

func parseNullableDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseDate(v string) (time.Time, error) {
	if len(v) > len(model.DateLayout) {
		v = v[:len(model.DateLayout)]
	}
	return time.ParseInLocation(model.DateLayout, v, time.Local)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scopeClause restricts a query to one account unless scope is AllAccounts.
func scopeClause(column string, scope int64, args *[]any) string {
	if scope == model.AllAccounts {
		return "1 = 1"
	}
	*args = append(*args, scope)
	return column + " = ?"
}

// insertSyncable runs an INSERT and gives the new row a provisional remote id
// when it was created locally without one.
func insertSyncable(ctx context.Context, q Querier, table string, remoteID model.Ref, query string, args ...any) (int64, model.Ref, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, model.Unresolved, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, model.Unresolved, err
	}
	if remoteID != model.Unresolved {
		return id, remoteID, nil
	}
	provisional := model.ProvisionalRemoteID(id)
	if _, err := q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET remote_id = ? WHERE id = ?`, table),
		int64(provisional), id,
	); err != nil {
		return 0, model.Unresolved, err
	}
	return id, provisional, nil
}

// assignProvisionalIDs backfills provisional remote ids for rows missing one.
func assignProvisionalIDs(ctx context.Context, q Querier, table string) error {
	_, err := q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET remote_id = -(id + 1) WHERE remote_id IS NULL`, table))
	if err != nil {
		return fmt.Errorf("assign provisional ids on %s: %w", table, err)
	}
	return nil
}
