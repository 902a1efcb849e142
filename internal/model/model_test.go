package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Ref Tests
// =============================================================================

func TestSanitizeRef(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Ref
	}{
		{"nil", nil, Unresolved},
		{"empty string", "", Unresolved},
		{"null string", "null", Unresolved},
		{"odoo false", false, NoParent},
		{"zero", int64(0), NoParent},
		{"zero string", "0", NoParent},
		{"positive", int64(42), 42},
		{"negative local", int64(-7), -7},
		{"numeric string", " 15 ", 15},
		{"float", 12.0, 12},
		{"bytes", []byte("9"), 9},
		{"garbage", "abc", Unresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRef(tt.in))
		})
	}
}

func TestRefIsSet(t *testing.T) {
	assert.False(t, Unresolved.IsSet())
	assert.False(t, NoParent.IsSet())
	assert.True(t, Ref(5).IsSet())
	assert.True(t, Ref(-5).IsSet())
}

func TestRefValueStoresUnresolvedAsNull(t *testing.T) {
	v, err := Unresolved.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Ref(3).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestProvisionalRemoteIDNeverCollides(t *testing.T) {
	for _, id := range []int64{1, 2, 100} {
		r := ProvisionalRemoteID(id)
		assert.True(t, r.IsProvisional())
		assert.NotEqual(t, Unresolved, r)
	}
	assert.NotEqual(t, ProvisionalRemoteID(1), ProvisionalRemoteID(2))
}

// =============================================================================
// IDSet Tests
// =============================================================================

func TestParseIDSet(t *testing.T) {
	s, err := ParseIDSet("3, 1,3,,2")
	require.NoError(t, err)
	assert.Equal(t, IDSet{3, 1, 2}, s)
	assert.Equal(t, "3,1,2", s.String())

	empty, err := ParseIDSet("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseIDSet("1,x")
	assert.Error(t, err)
}

func TestIDSetIntersects(t *testing.T) {
	a := NewIDSet(1, 2, 3)
	assert.True(t, a.Intersects(NewIDSet(9, 3)))
	assert.False(t, a.Intersects(NewIDSet(7, 8)))
	assert.False(t, a.Intersects(nil))
}

func TestIDSetScan(t *testing.T) {
	var s IDSet
	require.NoError(t, s.Scan("5,6"))
	assert.Equal(t, IDSet{5, 6}, s)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)
}

// =============================================================================
// Misc Tests
// =============================================================================

func TestSyncStatusModified(t *testing.T) {
	assert.Equal(t, SyncNew, SyncNew.Modified())
	assert.Equal(t, SyncUpdated, SyncClean.Modified())
	assert.Equal(t, SyncUpdated, SyncUpdated.Modified())
}

func TestParseFormType(t *testing.T) {
	ft, err := ParseFormType("project_update")
	require.NoError(t, err)
	assert.Equal(t, "project_updates", ft.Table())

	_, err = ParseFormType("invoice")
	assert.Error(t, err)
}

func TestQuadrant(t *testing.T) {
	assert.Equal(t, "Delegate", QuadrantDelegate.String())
	assert.True(t, QuadrantDelete.Valid())
	assert.False(t, Quadrant(4).Valid())
	assert.False(t, Quadrant(-1).Valid())
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#F06050", ColorHex("1"))
	assert.Equal(t, "", ColorHex("0"))
	assert.Equal(t, "", ColorHex("99"))
	assert.Equal(t, "#123456", ColorHex("#123456"))
	assert.False(t, HasColor("0"))
	assert.False(t, HasColor(""))
	assert.True(t, HasColor("4"))
}

func TestResultFail(t *testing.T) {
	r := Fail(assert.AnError)
	assert.False(t, r.Success)
	assert.Equal(t, assert.AnError.Error(), r.Message)
	assert.Error(t, r.Err())
	assert.NoError(t, OK("done").Err())
}
