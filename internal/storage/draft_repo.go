package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

// DraftKey identifies at most one draft.
type DraftKey struct {
	FormType       model.FormType
	RecordID       *int64
	AccountID      int64
	PageIdentifier string
}

// DraftRepo provides operations for form drafts.
type DraftRepo struct {
	q Querier
}

// NewDraftRepo creates a new draft repository.
func NewDraftRepo(q Querier) *DraftRepo {
	return &DraftRepo{q: q}
}

const draftColumns = `id, draft_type, record_id, account_id, page_identifier, form_data, original_data,
	field_changes, created_at, updated_at`

// Find returns the draft matching a key.
func (r *DraftRepo) Find(ctx context.Context, key DraftKey) (*model.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE draft_type = ? AND account_id = ? AND page_identifier = ?`
	args := []any{string(key.FormType), key.AccountID, key.PageIdentifier}
	if key.RecordID == nil {
		query += ` AND record_id IS NULL`
	} else {
		query += ` AND record_id = ?`
		args = append(args, *key.RecordID)
	}
	return oneDraft(r.q.QueryRowContext(ctx, query, args...))
}

// DraftFilter selects drafts for bulk removal. Zero fields match anything.
type DraftFilter struct {
	FormType       model.FormType
	RecordID       *int64
	AccountID      *int64
	PageIdentifier string
}

// Match returns the drafts selected by f.
func (r *DraftRepo) Match(ctx context.Context, f DraftFilter) ([]*model.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE 1 = 1`
	var args []any
	if f.FormType != "" {
		query += ` AND draft_type = ?`
		args = append(args, string(f.FormType))
	}
	if f.RecordID != nil {
		query += ` AND record_id = ?`
		args = append(args, *f.RecordID)
	}
	if f.AccountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *f.AccountID)
	}
	if f.PageIdentifier != "" {
		query += ` AND page_identifier = ?`
		args = append(args, f.PageIdentifier)
	}
	return r.list(ctx, query+` ORDER BY id`, args...)
}

// Get retrieves a draft by id.
func (r *DraftRepo) Get(ctx context.Context, id int64) (*model.Draft, error) {
	return oneDraft(r.q.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
}

// Insert stores a new draft.
func (r *DraftRepo) Insert(ctx context.Context, d *model.Draft) error {
	form, original, changes, err := encodeDraft(d)
	if err != nil {
		return err
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO drafts (draft_type, record_id, account_id, page_identifier, form_data, original_data,
			field_changes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(d.FormType), recordArg(d.RecordID), d.AccountID, d.PageIdentifier, form, original, changes,
		mustTime(now), mustTime(now),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// Update rewrites the snapshots of an existing draft.
func (r *DraftRepo) Update(ctx context.Context, d *model.Draft) error {
	form, original, changes, err := encodeDraft(d)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE drafts SET form_data = ?, original_data = ?, field_changes = ?, updated_at = ? WHERE id = ?`,
		form, original, changes, mustTime(d.UpdatedAt), d.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// Delete removes a draft by id.
func (r *DraftRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// List returns drafts of an account (or all accounts), most recently updated first.
// An empty form type lists every type.
func (r *DraftRepo) List(ctx context.Context, scope int64, formType model.FormType) ([]*model.Draft, error) {
	var args []any
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE ` + scopeClause("account_id", scope, &args)
	if formType != "" {
		query += ` AND draft_type = ?`
		args = append(args, string(formType))
	}
	query += ` ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, query, args...)
}

// UpdatedBefore returns drafts last saved before cutoff.
func (r *DraftRepo) UpdatedBefore(ctx context.Context, cutoff time.Time) ([]*model.Draft, error) {
	return r.list(ctx, `SELECT `+draftColumns+` FROM drafts WHERE updated_at < ? ORDER BY id`, mustTime(cutoff))
}

// ForDeletedRecords returns drafts whose owning record is soft-deleted.
func (r *DraftRepo) ForDeletedRecords(ctx context.Context, formType model.FormType) ([]*model.Draft, error) {
	table := formType.Table()
	if table == "" {
		return nil, fmt.Errorf("no table for form type %q", formType)
	}
	return r.list(ctx, `SELECT `+draftColumns+` FROM drafts WHERE draft_type = ? AND record_id IN (
		SELECT id FROM `+table+` WHERE sync_status = ?) ORDER BY id`,
		string(formType), string(model.SyncDeleted))
}

// ForRecords returns drafts attached to the given local record ids.
func (r *DraftRepo) ForRecords(ctx context.Context, formType model.FormType, recordIDs []int64) ([]*model.Draft, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(recordIDs)), ",")
	args := []any{string(formType)}
	for _, id := range recordIDs {
		args = append(args, id)
	}
	return r.list(ctx, `SELECT `+draftColumns+` FROM drafts
		WHERE draft_type = ? AND record_id IN (`+placeholders+`) ORDER BY id`, args...)
}

// CountForRecord returns how many drafts remain for one record.
func (r *DraftRepo) CountForRecord(ctx context.Context, formType model.FormType, recordID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM drafts WHERE draft_type = ? AND record_id = ?`,
		string(formType), recordID,
	).Scan(&n)
	return n, err
}

// CountByType returns draft counts per form type.
func (r *DraftRepo) CountByType(ctx context.Context, scope int64) (map[model.FormType]int, error) {
	var args []any
	rows, err := r.q.QueryContext(ctx, `SELECT draft_type, COUNT(*) FROM drafts WHERE `+
		scopeClause("account_id", scope, &args)+` GROUP BY draft_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.FormType]int)
	for rows.Next() {
		var ft string
		var n int
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, err
		}
		out[model.FormType(ft)] = n
	}
	return out, rows.Err()
}

// SetHasDraft sets the hasDraft flag on the record owning drafts of a form type.
func (r *DraftRepo) SetHasDraft(ctx context.Context, formType model.FormType, recordID int64, has bool) error {
	table := formType.Table()
	if table == "" {
		return fmt.Errorf("no table for form type %q", formType)
	}
	_, err := r.q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET has_draft = ? WHERE id = ?`, table),
		boolInt(has), recordID)
	return err
}

// RecomputeHasDraft rebuilds the hasDraft flag of one table from the drafts
// table and returns how many rows changed.
func (r *DraftRepo) RecomputeHasDraft(ctx context.Context, formType model.FormType) (int64, error) {
	table := formType.Table()
	if table == "" {
		return 0, fmt.Errorf("no table for form type %q", formType)
	}
	expr := fmt.Sprintf(`CASE WHEN EXISTS (
			SELECT 1 FROM drafts d WHERE d.draft_type = ? AND d.record_id = %[1]s.id
		) THEN 1 ELSE 0 END`, table)
	res, err := r.q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %[1]s SET has_draft = %[2]s WHERE has_draft <> %[2]s`, table, expr),
		string(formType), string(formType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DraftRepo) list(ctx context.Context, query string, args ...any) ([]*model.Draft, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Draft
	for rows.Next() {
		d, scanErr := scanDraft(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func recordArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func encodeDraft(d *model.Draft) (form, original, changes string, err error) {
	f, err := json.Marshal(nonNilMap(d.FormData))
	if err != nil {
		return "", "", "", fmt.Errorf("encode form data: %w", err)
	}
	o, err := json.Marshal(nonNilMap(d.OriginalData))
	if err != nil {
		return "", "", "", fmt.Errorf("encode original data: %w", err)
	}
	fields := d.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	c, err := json.Marshal(fields)
	if err != nil {
		return "", "", "", fmt.Errorf("encode field changes: %w", err)
	}
	return string(f), string(o), string(c), nil
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func oneDraft(row *sql.Row) (*model.Draft, error) {
	d, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDraft(s scanner) (*model.Draft, error) {
	var d model.Draft
	var formType, form, original, changes, created, updated string
	var recordID sql.NullInt64
	if err := s.Scan(&d.ID, &formType, &recordID, &d.AccountID, &d.PageIdentifier, &form, &original,
		&changes, &created, &updated); err != nil {
		return nil, err
	}
	d.FormType = model.FormType(formType)
	if recordID.Valid {
		id := recordID.Int64
		d.RecordID = &id
	}
	if err := json.Unmarshal([]byte(form), &d.FormData); err != nil {
		return nil, fmt.Errorf("decode form data of draft %d: %w", d.ID, err)
	}
	if err := json.Unmarshal([]byte(original), &d.OriginalData); err != nil {
		return nil, fmt.Errorf("decode original data of draft %d: %w", d.ID, err)
	}
	if err := json.Unmarshal([]byte(changes), &d.ChangedFields); err != nil {
		return nil, fmt.Errorf("decode field changes of draft %d: %w", d.ID, err)
	}
	var err error
	if d.CreatedAt, err = parseRequiredTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return nil, err
	}
	return &d, nil
}
