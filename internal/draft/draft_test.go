package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/storage"
)

func setup(t *testing.T) (*storage.DB, *Manager) {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, New(db)
}

func createTask(t *testing.T, db *storage.DB, remote model.Ref) *model.Task {
	t.Helper()
	task := &model.Task{Syncable: model.Syncable{RemoteID: remote, AccountID: 1}, Name: "task"}
	require.NoError(t, storage.NewTaskRepo(db).Create(context.Background(), task))
	return task
}

func hasDraft(t *testing.T, db *storage.DB, id int64) bool {
	t.Helper()
	task, err := storage.NewTaskRepo(db).Get(context.Background(), id)
	require.NoError(t, err)
	return task.HasDraft
}

func taskKey(id int64) Key {
	return Key{FormType: model.FormTask, RecordID: &id, AccountID: 1, PageIdentifier: "page-1"}
}

// =============================================================================
// Diff Tests
// =============================================================================

func TestChangedFields(t *testing.T) {
	tests := []struct {
		name     string
		current  map[string]any
		original map[string]any
		want     []string
	}{
		{"identical", map[string]any{"a": 1, "b": "x"}, map[string]any{"a": 1, "b": "x"}, []string{}},
		{"int_vs_float", map[string]any{"hours": 2}, map[string]any{"hours": 2.0}, []string{}},
		{"changed_sorted", map[string]any{"z": 1, "a": 2}, map[string]any{"z": 0, "a": 0}, []string{"a", "z"}},
		{"added", map[string]any{"a": 1, "b": 2}, map[string]any{"a": 1}, []string{"b"}},
		{"removed_last", map[string]any{"b": 2}, map[string]any{"a": 1, "b": 1}, []string{"b", "a"}},
		{"nested_list", map[string]any{"ids": []int{1, 2}}, map[string]any{"ids": []any{1, 2}}, []string{}},
		{"nested_map", map[string]any{"m": map[string]any{"k": "v2"}}, map[string]any{"m": map[string]any{"k": "v"}}, []string{"m"}},
		{"nil_original", map[string]any{"a": 1}, nil, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChangedFields(tt.current, tt.original)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChangedFieldsRejectsUnserializable(t *testing.T) {
	_, err := ChangedFields(map[string]any{"fn": func() {}}, nil)
	assert.Error(t, err)
}

func TestChangesSummary(t *testing.T) {
	assert.Equal(t, "No changes", ChangesSummary(nil))
	assert.Equal(t, "1 field changed: name", ChangesSummary([]string{"name"}))
	assert.Equal(t, "2 fields changed: name, stage", ChangesSummary([]string{"name", "stage"}))
}

// =============================================================================
// Manager Tests
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)

	original := map[string]any{"name": "task", "hours": 1}
	current := map[string]any{"name": "renamed", "hours": 1}

	res := m.Save(ctx, taskKey(task.ID), current, original)
	require.True(t, res.Success, res.Message)
	assert.True(t, res.HasChanges)
	assert.Equal(t, []string{"name"}, res.ChangedFields)
	assert.NotZero(t, res.DraftID)
	assert.Equal(t, model.Ref(10), res.RecordRemoteID)
	assert.Equal(t, "page-1", res.PageIdentifier)
	assert.True(t, hasDraft(t, db, task.ID))

	loaded := m.Load(ctx, taskKey(task.ID))
	require.True(t, loaded.Success)
	assert.Equal(t, res.DraftID, loaded.Draft.ID)
	assert.Equal(t, "renamed", loaded.Draft.FormData["name"])
	assert.Equal(t, "task", loaded.Draft.OriginalData["name"])
	assert.False(t, loaded.Draft.IsNewRecord())
}

func TestSaveChecksRecordOwner(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	current := map[string]any{"name": "renamed"}

	missing := int64(999)
	res := m.Save(ctx, Key{FormType: model.FormTask, RecordID: &missing, AccountID: 1}, current, nil)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindNotFound.String(), res.Kind)

	wrong := m.Save(ctx, Key{FormType: model.FormTask, RecordID: &task.ID, AccountID: 2}, current, nil)
	assert.False(t, wrong.Success)
	assert.Equal(t, errors.KindValidation.String(), wrong.Kind)
	assert.False(t, hasDraft(t, db, task.ID))

	all := m.All(ctx, model.AllAccounts)
	require.True(t, all.Success)
	assert.Empty(t, all.Drafts)
}

func TestNewPageIdentifierIsUnique(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()
	a, b := NewPageIdentifier(), NewPageIdentifier()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	for _, page := range []string{a, b} {
		res := m.Save(ctx, Key{FormType: model.FormProject, AccountID: 1, PageIdentifier: page},
			map[string]any{"name": page}, nil)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, page, res.PageIdentifier)
		assert.Equal(t, model.Unresolved, res.RecordRemoteID)
	}
	all := m.All(ctx, model.AllAccounts)
	require.True(t, all.Success)
	assert.Len(t, all.Drafts, 2)
}

func TestSaveUpdatesInPlace(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	original := map[string]any{"name": "task"}

	first := m.Save(ctx, taskKey(task.ID), map[string]any{"name": "a"}, original)
	second := m.Save(ctx, taskKey(task.ID), map[string]any{"name": "b"}, original)
	require.True(t, second.Success)
	assert.Equal(t, first.DraftID, second.DraftID)

	all := m.All(ctx, 1)
	require.True(t, all.Success)
	assert.Len(t, all.Drafts, 1)
	assert.Equal(t, "b", all.Drafts[0].FormData["name"])
}

func TestSaveWithoutChangesWritesNothing(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	snapshot := map[string]any{"name": "task", "ids": []int{1}}

	res := m.Save(ctx, taskKey(task.ID), snapshot, map[string]any{"name": "task", "ids": []any{1}})
	assert.True(t, res.Success)
	assert.False(t, res.HasChanges)
	assert.Equal(t, "No changes", res.Message)
	assert.Empty(t, m.All(ctx, model.AllAccounts).Drafts)
	assert.False(t, hasDraft(t, db, task.ID))
}

func TestSaveRejectsUnknownFormType(t *testing.T) {
	_, m := setup(t)
	res := m.Save(context.Background(), Key{FormType: "invoice", AccountID: 1}, map[string]any{"a": 1}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindValidation.String(), res.Kind)
}

func TestNewRecordDrafts(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()
	zero := int64(0)

	// Record id 0 is treated as "not yet saved".
	res := m.Save(ctx, Key{FormType: model.FormProject, RecordID: &zero, AccountID: 1},
		map[string]any{"name": "new project"}, map[string]any{})
	require.True(t, res.Success, res.Message)

	loaded := m.Load(ctx, Key{FormType: model.FormProject, AccountID: 1, PageIdentifier: DefaultPage})
	require.True(t, loaded.Success)
	assert.True(t, loaded.Draft.IsNewRecord())
}

func TestLoadMissing(t *testing.T) {
	_, m := setup(t)
	res := m.Load(context.Background(), taskKey(99))
	assert.False(t, res.Success)
	assert.Equal(t, "No draft found", res.Message)
	assert.Equal(t, errors.KindNotFound.String(), res.Kind)
	assert.Nil(t, res.Draft)
}

func TestDeleteClearsHasDraftWhenLastDraftGoes(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	original := map[string]any{"name": "task"}

	k1 := taskKey(task.ID)
	k2 := taskKey(task.ID)
	k2.PageIdentifier = "page-2"
	a := m.Save(ctx, k1, map[string]any{"name": "a"}, original)
	b := m.Save(ctx, k2, map[string]any{"name": "b"}, original)
	require.True(t, a.Success)
	require.True(t, b.Success)

	require.True(t, m.Delete(ctx, a.DraftID).Success)
	assert.True(t, hasDraft(t, db, task.ID), "another page still holds a draft")

	require.True(t, m.Delete(ctx, b.DraftID).Success)
	assert.False(t, hasDraft(t, db, task.ID))

	res := m.Delete(ctx, b.DraftID)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindNotFound.String(), res.Kind)
}

func TestDeleteMatching(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	t1 := createTask(t, db, 10)
	t2 := createTask(t, db, 11)
	original := map[string]any{"name": "task"}

	require.True(t, m.Save(ctx, taskKey(t1.ID), map[string]any{"name": "x"}, original).Success)
	require.True(t, m.Save(ctx, taskKey(t2.ID), map[string]any{"name": "y"}, original).Success)

	res := m.DeleteMatching(ctx, storage.DraftFilter{FormType: model.FormTask, RecordID: &t1.ID})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Deleted)
	assert.False(t, hasDraft(t, db, t1.ID))
	assert.True(t, hasDraft(t, db, t2.ID))
}

func TestCleanupOld(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	require.True(t, m.Save(ctx, taskKey(task.ID), map[string]any{"name": "x"}, nil).Success)

	res := m.CleanupOld(ctx, 7*24*time.Hour)
	require.True(t, res.Success)
	assert.Equal(t, 0, res.Deleted)

	m.WithClock(func() time.Time { return time.Now().Add(8 * 24 * time.Hour) })
	res = m.CleanupOld(ctx, 7*24*time.Hour)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Deleted)
	assert.Contains(t, res.Message, "older than 7 days")
	assert.False(t, hasDraft(t, db, task.ID))
}

func TestCleanupForDeletedRecords(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	live := createTask(t, db, 10)
	gone := createTask(t, db, 11)
	require.True(t, m.Save(ctx, taskKey(live.ID), map[string]any{"name": "x"}, nil).Success)
	require.True(t, m.Save(ctx, taskKey(gone.ID), map[string]any{"name": "y"}, nil).Success)
	require.NoError(t, storage.NewTaskRepo(db).MarkDeleted(ctx, gone.ID))

	res := m.CleanupForDeletedRecords(ctx, model.FormTask, nil)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Deleted)

	res = m.CleanupForDeletedRecords(ctx, model.FormTask, []int64{live.ID})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Deleted)
	assert.Empty(t, m.All(ctx, model.AllAccounts).Drafts)
}

func TestSyncHasDraftFlags(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	task := createTask(t, db, 10)
	require.NoError(t, storage.NewDraftRepo(db).SetHasDraft(ctx, model.FormTask, task.ID, true))

	res := m.SyncHasDraftFlags(ctx)
	require.True(t, res.Success)
	assert.Equal(t, int64(1), res.Updated)
	assert.False(t, hasDraft(t, db, task.ID))
}

func TestSummary(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()

	empty := m.Summary(ctx, model.AllAccounts)
	require.True(t, empty.Success)
	assert.Equal(t, "No unsaved drafts", empty.Summary)

	t1 := createTask(t, db, 10)
	t2 := createTask(t, db, 11)
	require.True(t, m.Save(ctx, taskKey(t1.ID), map[string]any{"name": "x"}, nil).Success)
	require.True(t, m.Save(ctx, taskKey(t2.ID), map[string]any{"name": "y"}, nil).Success)
	require.True(t, m.Save(ctx, Key{FormType: model.FormProject, AccountID: 1}, map[string]any{"name": "p"}, nil).Success)

	sum := m.Summary(ctx, 1)
	require.True(t, sum.Success)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.ByType[model.FormTask])
	assert.Equal(t, "2 Tasks and 1 Project", sum.Summary)
	require.Len(t, sum.Items, 3)

	require.True(t, m.Save(ctx, Key{FormType: model.FormActivity, AccountID: 1}, map[string]any{"summary": "call"}, nil).Success)
	assert.Equal(t, "2 Tasks, 1 Project, and 1 Activity", m.Summary(ctx, 1).Summary)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Project Update", Label(model.FormProjectUpdate))
	assert.Equal(t, "other", Label("other"))
}
