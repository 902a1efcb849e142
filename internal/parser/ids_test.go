package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"3", "1,2", "3", " 4 "})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4}, ids)

	_, err = ParseIDs([]string{"1", "x"})
	assert.Error(t, err)

	_, err = ParseIDs([]string{"0"})
	assert.Error(t, err)

	_, err = ParseIDs(nil)
	assert.Error(t, err)
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("")
	require.NoError(t, err)
	assert.Equal(t, model.Unresolved, r)

	r, err = ParseRef("-4")
	require.NoError(t, err)
	assert.True(t, r.IsProvisional())

	r, err = ParseRef("12")
	require.NoError(t, err)
	assert.Equal(t, model.Ref(12), r)

	_, err = ParseRef("twelve")
	assert.Error(t, err)
}

func TestParseAssignee(t *testing.T) {
	tests := []struct {
		input   string
		want    model.AssigneeRef
		wantErr bool
	}{
		{"2:17", model.AssigneeRef{AccountID: 2, UserID: 17}, false},
		{"17", model.AssigneeRef{AccountID: model.AllAccounts, UserID: 17}, false},
		{" 0 : 5 ", model.AssigneeRef{AccountID: 0, UserID: 5}, false},
		{"x:5", model.AssigneeRef{}, true},
		{"2:y", model.AssigneeRef{}, true},
		{"", model.AssigneeRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAssignee(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssignees(t *testing.T) {
	refs, err := ParseAssignees([]string{"1:4,1:5", "9"})
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.Equal(t, int64(9), refs[2].UserID)
}

func TestParseAccountScope(t *testing.T) {
	s, err := ParseAccountScope("all")
	require.NoError(t, err)
	assert.Equal(t, model.AllAccounts, s)

	s, err = ParseAccountScope("-1")
	require.NoError(t, err)
	assert.Equal(t, model.AllAccounts, s)

	s, err = ParseAccountScope("3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), s)

	_, err = ParseAccountScope("-2")
	assert.ErrorIs(t, err, errors.ErrInvalidFilter)
}

func TestParseQuadrant(t *testing.T) {
	q, err := ParseQuadrant("Plan")
	require.NoError(t, err)
	assert.Equal(t, int(model.QuadrantPlan), q)

	q, err = ParseQuadrant("delete")
	require.NoError(t, err)
	assert.Equal(t, int(model.QuadrantDelete), q)

	q, err = ParseQuadrant("2")
	require.NoError(t, err)
	assert.Equal(t, 2, q)

	_, err = ParseQuadrant("urgent")
	assert.ErrorIs(t, err, errors.ErrInvalidQuadrant)
}
