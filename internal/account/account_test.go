package account

import (
	"context"
	"testing"

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

func work() *model.Account {
	return &model.Account{Name: "Work", ServerLink: "https://erp.example.com", DatabaseName: "prod", Username: "me"}
}

func countDefaults(t *testing.T, m *Manager) int {
	t.Helper()
	accounts, err := m.List(context.Background())
	require.NoError(t, err)
	n := 0
	for _, a := range accounts {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestDefaultIsLocalWhenUnset(t *testing.T) {
	_, m := setup(t)
	assert.Equal(t, model.LocalAccountID, m.DefaultID(context.Background()))
}

func TestCreate(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()

	res := m.Create(ctx, work(), false)
	require.True(t, res.Success, res.Message)
	assert.NotZero(t, res.AccountID)
	assert.Equal(t, model.LocalAccountID, m.DefaultID(ctx))

	a, err := m.Get(ctx, res.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "Work", a.Name)
}

func TestCreateDuplicate(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()
	require.True(t, m.Create(ctx, work(), false).Success)

	byName := work()
	byName.Name = "WORK"
	byName.DatabaseName = "staging"
	res := m.Create(ctx, byName, false)
	assert.False(t, res.Success)
	assert.Equal(t, storage.DuplicateName, res.DuplicateType)
	assert.Equal(t, errors.KindConstraint.String(), res.Kind)

	byConn := work()
	byConn.Name = "Other"
	res = m.Create(ctx, byConn, false)
	assert.False(t, res.Success)
	assert.Equal(t, storage.DuplicateConnection, res.DuplicateType)

	accounts, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2, "local plus the first account only")
}

func TestCreateValidates(t *testing.T) {
	_, m := setup(t)
	bad := work()
	bad.ServerLink = "not a url"
	res := m.Create(context.Background(), bad, false)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindValidation.String(), res.Kind)
}

func TestSetDefaultKeepsExactlyOne(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()

	a := m.Create(ctx, work(), true)
	require.True(t, a.Success)
	other := work()
	other.Name, other.DatabaseName = "Side", "side"
	b := m.Create(ctx, other, false)
	require.True(t, b.Success)

	assert.Equal(t, a.AccountID, m.DefaultID(ctx))
	assert.Equal(t, 1, countDefaults(t, m))

	for _, id := range []int64{b.AccountID, model.LocalAccountID, a.AccountID, a.AccountID} {
		require.True(t, m.SetDefault(ctx, id).Success)
		assert.Equal(t, id, m.DefaultID(ctx))
		assert.Equal(t, 1, countDefaults(t, m))
	}
}

func TestSetDefaultUnknownLeavesFlagsAlone(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()
	a := m.Create(ctx, work(), true)
	require.True(t, a.Success)

	res := m.SetDefault(ctx, 999)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindNotFound.String(), res.Kind)
	assert.Equal(t, a.AccountID, m.DefaultID(ctx))
}

func TestDelete(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	a := m.Create(ctx, work(), true)
	require.True(t, a.Success)

	task := &model.Task{Syncable: model.Syncable{RemoteID: 5, AccountID: a.AccountID}, Name: "remote task"}
	require.NoError(t, storage.NewTaskRepo(db).Create(ctx, task))

	res := m.Delete(ctx, a.AccountID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, int64(1), res.Removed["tasks"])
	assert.Equal(t, model.LocalAccountID, m.DefaultID(ctx))
	assert.Equal(t, 1, countDefaults(t, m))

	_, err := m.Get(ctx, a.AccountID)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	res = m.Delete(ctx, a.AccountID)
	assert.Equal(t, errors.KindNotFound.String(), res.Kind)
}

func TestDeleteLocalRefused(t *testing.T) {
	_, m := setup(t)
	res := m.Delete(context.Background(), model.LocalAccountID)
	assert.False(t, res.Success)
	assert.Equal(t, errors.KindValidation.String(), res.Kind)
}

func TestScope(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()
	a := m.Create(ctx, work(), true)
	require.True(t, a.Success)

	all := model.AllAccounts
	assert.Equal(t, a.AccountID, m.Scope(ctx, nil))
	assert.Equal(t, model.AllAccounts, m.Scope(ctx, &all))
}
