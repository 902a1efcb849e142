// Package draft keeps in-progress form edits for crash recovery.
//
// A draft is only written when the form differs from the snapshot it was
// opened with. The owning record's hasDraft flag follows draft existence.
// Every entry point reports failure through its result value.
package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
)

// DefaultPage is the page identifier used when the caller gives none.
const DefaultPage = "default"

// NewPageIdentifier returns a unique page identifier for a form instance.
func NewPageIdentifier() string {
	return uuid.NewString()
}

// Manager saves, loads and maintains drafts.
type Manager struct {
	db  *storage.DB
	now func() time.Time
}

// New creates a draft manager.
func New(db *storage.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

// WithClock replaces the clock used for age based cleanup.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Key identifies the draft of one form instance.
type Key struct {
	FormType       model.FormType
	RecordID       *int64
	AccountID      int64
	PageIdentifier string
}

func (k Key) normalized() storage.DraftKey {
	dk := storage.DraftKey{
		FormType:       k.FormType,
		RecordID:       k.RecordID,
		AccountID:      k.AccountID,
		PageIdentifier: k.PageIdentifier,
	}
	if dk.RecordID != nil && *dk.RecordID <= 0 {
		dk.RecordID = nil
	}
	if dk.PageIdentifier == "" {
		dk.PageIdentifier = DefaultPage
	}
	return dk
}

// SaveResult is the outcome of Save.
type SaveResult struct {
	model.Result
	DraftID        int64     `json:"draft_id,omitempty"`
	HasChanges     bool      `json:"has_changes"`
	ChangedFields  []string  `json:"changed_fields"`
	PageIdentifier string    `json:"page_identifier,omitempty"`
	RecordRemoteID model.Ref `json:"record_remote_id"`
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	model.Result
	Draft *model.Draft `json:"draft,omitempty"`
}

// DeleteResult is the outcome of the bulk delete operations.
type DeleteResult struct {
	model.Result
	Deleted int `json:"deleted_count"`
}

// ListResult is the outcome of All.
type ListResult struct {
	model.Result
	Drafts []*model.Draft `json:"drafts"`
}

// SyncResult is the outcome of SyncHasDraftFlags.
type SyncResult struct {
	model.Result
	Updated int64 `json:"updated_count"`
}

func fail(ctx context.Context, op string, err error, args ...any) model.Result {
	if errors.KindOf(err) == errors.KindUnknown {
		err = errors.WithStack(errors.Storage(op, err), "draft."+op)
	}
	logging.LogFailure(ctx, op, err, args...)
	return model.Fail(err)
}

// Save stores the current form data when it differs from originalData.
// Saving unchanged data is a successful no-op that writes nothing.
func (m *Manager) Save(ctx context.Context, key Key, current, original map[string]any) SaveResult {
	if _, err := model.ParseFormType(string(key.FormType)); err != nil {
		return SaveResult{Result: fail(ctx, "save_draft", err)}
	}
	dk := key.normalized()

	changed, err := ChangedFields(current, original)
	if err != nil {
		return SaveResult{Result: fail(ctx, "save_draft", errors.NewUserError(err.Error(), "Form values must be plain text, numbers, lists or maps."))}
	}
	if len(changed) == 0 {
		return SaveResult{Result: model.OK("No changes"), ChangedFields: []string{}}
	}

	var draftID int64
	recordRemote := model.Unresolved
	err = m.db.WithTx(ctx, func(q storage.Querier) error {
		if dk.RecordID != nil {
			ids := storage.NewResolver(q)
			entity := storage.Entity(dk.FormType.Table())
			switch owner := ids.AccountOf(ctx, entity, *dk.RecordID); owner {
			case storage.NotFoundID:
				return errors.ErrNotFound
			case dk.AccountID:
			default:
				return errors.NewUserError(
					fmt.Sprintf("%s #%d belongs to account %d", Label(dk.FormType), *dk.RecordID, owner),
					"Save the draft under the record's own account.")
			}
			recordRemote = ids.RemoteID(ctx, entity, *dk.RecordID)
		}

		repo := storage.NewDraftRepo(q)
		d, err := repo.Find(ctx, dk)
		switch {
		case err == nil:
			d.FormData, d.OriginalData, d.ChangedFields = current, original, changed
			if err := repo.Update(ctx, d); err != nil {
				return err
			}
		case errors.Is(err, storage.ErrNotFound):
			d = &model.Draft{
				FormType:       dk.FormType,
				RecordID:       dk.RecordID,
				AccountID:      dk.AccountID,
				PageIdentifier: dk.PageIdentifier,
				FormData:       current,
				OriginalData:   original,
				ChangedFields:  changed,
			}
			if err := repo.Insert(ctx, d); err != nil {
				return err
			}
		default:
			return err
		}
		draftID = d.ID

		if dk.RecordID != nil {
			return repo.SetHasDraft(ctx, dk.FormType, *dk.RecordID, true)
		}
		return nil
	})
	if err != nil {
		return SaveResult{Result: fail(ctx, "save_draft", err, logging.KeyFormType, string(dk.FormType))}
	}

	logging.LogOperation(ctx, "save_draft", logging.KeyDraft, draftID, logging.KeyFormType, string(dk.FormType),
		"changed", len(changed))
	return SaveResult{
		Result:         model.OK("Draft saved"),
		DraftID:        draftID,
		HasChanges:     true,
		ChangedFields:  changed,
		PageIdentifier: dk.PageIdentifier,
		RecordRemoteID: recordRemote,
	}
}

// Load returns the draft of a form instance.
func (m *Manager) Load(ctx context.Context, key Key) LoadResult {
	if _, err := model.ParseFormType(string(key.FormType)); err != nil {
		return LoadResult{Result: fail(ctx, "load_draft", err)}
	}
	d, err := storage.NewDraftRepo(m.db).Find(ctx, key.normalized())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoadResult{Result: model.Result{
				Success: false,
				Message: "No draft found",
				Kind:    errors.KindNotFound.String(),
			}}
		}
		return LoadResult{Result: fail(ctx, "load_draft", err)}
	}
	return LoadResult{Result: model.OK("Draft loaded"), Draft: d}
}

// Delete removes one draft, typically after the form was saved for real.
func (m *Manager) Delete(ctx context.Context, id int64) model.Result {
	if id <= 0 {
		return fail(ctx, "delete_draft", errors.NewUserErrorWithField("id", fmt.Sprint(id), "invalid draft id", ""))
	}
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewDraftRepo(q)
		d, err := repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errors.ErrDraftNotFound
			}
			return err
		}
		_, err = removeDrafts(ctx, repo, []*model.Draft{d})
		return err
	})
	if err != nil {
		return fail(ctx, "delete_draft", err, logging.KeyDraft, id)
	}
	logging.LogOperation(ctx, "delete_draft", logging.KeyDraft, id)
	return model.OK("Draft deleted")
}

// DeleteMatching removes every draft selected by f.
func (m *Manager) DeleteMatching(ctx context.Context, f storage.DraftFilter) DeleteResult {
	return m.deleteWith(ctx, "delete_drafts", func(repo *storage.DraftRepo) ([]*model.Draft, error) {
		return repo.Match(ctx, f)
	}, func(n int) string { return fmt.Sprintf("Deleted %d draft(s)", n) })
}

// CleanupOld removes drafts not saved for longer than maxAge.
func (m *Manager) CleanupOld(ctx context.Context, maxAge time.Duration) DeleteResult {
	cutoff := m.now().Add(-maxAge)
	return m.deleteWith(ctx, "cleanup_old_drafts", func(repo *storage.DraftRepo) ([]*model.Draft, error) {
		return repo.UpdatedBefore(ctx, cutoff)
	}, func(n int) string {
		return fmt.Sprintf("Cleaned up %d old draft(s) (older than %s)", n, formatAge(maxAge))
	})
}

// CleanupForDeletedRecords removes drafts of the given records, or of every
// soft-deleted record of the form type when ids is empty.
func (m *Manager) CleanupForDeletedRecords(ctx context.Context, formType model.FormType, ids []int64) DeleteResult {
	if _, err := model.ParseFormType(string(formType)); err != nil {
		return DeleteResult{Result: fail(ctx, "cleanup_deleted_drafts", err)}
	}
	return m.deleteWith(ctx, "cleanup_deleted_drafts", func(repo *storage.DraftRepo) ([]*model.Draft, error) {
		if len(ids) > 0 {
			return repo.ForRecords(ctx, formType, ids)
		}
		return repo.ForDeletedRecords(ctx, formType)
	}, func(n int) string { return fmt.Sprintf("Cleaned up %d draft(s) for deleted %s(s)", n, formType) })
}

func (m *Manager) deleteWith(ctx context.Context, op string,
	selectFn func(*storage.DraftRepo) ([]*model.Draft, error), message func(int) string) DeleteResult {
	var deleted int
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewDraftRepo(q)
		drafts, err := selectFn(repo)
		if err != nil {
			return err
		}
		deleted, err = removeDrafts(ctx, repo, drafts)
		return err
	})
	if err != nil {
		return DeleteResult{Result: fail(ctx, op, err)}
	}
	logging.LogOperation(ctx, op, logging.KeyCount, deleted)
	return DeleteResult{Result: model.OK(message(deleted)), Deleted: deleted}
}

// PurgeRecords removes the drafts of records deleted inside a caller's
// transaction and returns how many were removed.
func PurgeRecords(ctx context.Context, q storage.Querier, formType model.FormType, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	repo := storage.NewDraftRepo(q)
	drafts, err := repo.ForRecords(ctx, formType, ids)
	if err != nil {
		return 0, err
	}
	return removeDrafts(ctx, repo, drafts)
}

// removeDrafts deletes drafts and clears hasDraft on records left without any.
func removeDrafts(ctx context.Context, repo *storage.DraftRepo, drafts []*model.Draft) (int, error) {
	type owner struct {
		formType model.FormType
		id       int64
	}
	owners := make(map[owner]bool)
	for _, d := range drafts {
		if err := repo.Delete(ctx, d.ID); err != nil {
			return 0, err
		}
		if d.RecordID != nil {
			owners[owner{d.FormType, *d.RecordID}] = true
		}
	}
	for o := range owners {
		n, err := repo.CountForRecord(ctx, o.formType, o.id)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			if err := repo.SetHasDraft(ctx, o.formType, o.id, false); err != nil {
				return 0, err
			}
		}
	}
	return len(drafts), nil
}

// SyncHasDraftFlags recomputes every hasDraft flag from the drafts table.
func (m *Manager) SyncHasDraftFlags(ctx context.Context) SyncResult {
	var updated int64
	err := m.db.WithTx(ctx, func(q storage.Querier) error {
		repo := storage.NewDraftRepo(q)
		for _, ft := range model.FormTypes {
			n, err := repo.RecomputeHasDraft(ctx, ft)
			if err != nil {
				return err
			}
			updated += n
		}
		return nil
	})
	if err != nil {
		return SyncResult{Result: fail(ctx, "sync_has_draft_flags", err)}
	}
	logging.LogOperation(ctx, "sync_has_draft_flags", logging.KeyCount, updated)
	return SyncResult{Result: model.OK(fmt.Sprintf("Repaired %d hasDraft flag(s)", updated)), Updated: updated}
}

// All returns the drafts of an account, or of every account with
// model.AllAccounts, most recent first.
func (m *Manager) All(ctx context.Context, scope int64) ListResult {
	drafts, err := storage.NewDraftRepo(m.db).List(ctx, scope, "")
	if err != nil {
		return ListResult{Result: fail(ctx, "list_drafts", err, logging.KeyAccount, scope)}
	}
	if drafts == nil {
		drafts = []*model.Draft{}
	}
	return ListResult{Result: model.OK(""), Drafts: drafts}
}

func formatAge(d time.Duration) string {
	if d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d days", int(d/(24*time.Hour)))
	}
	return d.String()
}
