package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UserError Tests
// =============================================================================

func TestNewUserError(t *testing.T) {
	err := NewUserError("invalid input", "try again")
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "try again", err.Suggestion)
}

func TestUserErrorError(t *testing.T) {
	t.Run("without_field", func(t *testing.T) {
		err := NewUserError("invalid input", "")
		assert.Equal(t, "invalid input", err.Error())
	})

	t.Run("with_field", func(t *testing.T) {
		err := NewUserErrorWithField("color", "#zz", "Invalid color", "")
		assert.Equal(t, "Invalid color: '#zz'", err.Error())
	})
}

func TestInvalidWrapsSentinel(t *testing.T) {
	err := Invalid(ErrInvalidQuadrant, "quadrant", "7")
	assert.True(t, errors.Is(err, ErrInvalidQuadrant))
	assert.True(t, IsUserError(err))
	assert.Equal(t, "quadrant", err.Field)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestIsUserError(t *testing.T) {
	t.Run("wrapped_user_error", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", NewUserError("test", ""))
		assert.True(t, IsUserError(wrapped))
	})

	t.Run("not_user_error", func(t *testing.T) {
		assert.False(t, IsUserError(errors.New("plain error")))
	})

	t.Run("nil_error", func(t *testing.T) {
		assert.False(t, IsUserError(nil))
	})
}

func TestAsUserError(t *testing.T) {
	ue, ok := AsUserError(NewUserError("test", "suggestion"))
	require.True(t, ok)
	assert.Equal(t, "suggestion", ue.Suggestion)

	_, ok = AsUserError(errors.New("plain"))
	assert.False(t, ok)
}

// =============================================================================
// SystemError Tests
// =============================================================================

func TestStorage(t *testing.T) {
	assert.Nil(t, Storage("list_tasks", nil))

	cause := errors.New("disk I/O error")
	err := Storage("list_tasks", cause)
	assert.True(t, IsSystemError(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "storage failure during list_tasks: disk I/O error", err.Error())
}

// =============================================================================
// Classification Tests
// =============================================================================

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"not_found", ErrNotFound, KindNotFound},
		{"wrapped_task_not_found", fmt.Errorf("load: %w", ErrTaskNotFound), KindNotFound},
		{"no_active_timer", ErrNoActiveTimer, KindNotFound},
		{"duplicate_account", ErrDuplicateAccount, KindConstraint},
		{"sqlite_unique", Storage("create", errors.New("UNIQUE constraint failed: accounts.name")), KindConstraint},
		{"has_children", fmt.Errorf("%w: 2 active subtask(s)", ErrHasChildren), KindReferential},
		{"invalid_form_type", ErrInvalidFormType, KindValidation},
		{"local_account", ErrLocalAccount, KindValidation},
		{"user_error", NewUserError("bad", ""), KindValidation},
		{"storage", Storage("open", errors.New("locked")), KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "referential", KindReferential.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrProjectNotFound))
	assert.False(t, IsNotFound(ErrHasChildren))
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestFormatError(t *testing.T) {
	t.Run("known_sentinel", func(t *testing.T) {
		msg := FormatError(fmt.Errorf("delete: %w", ErrHasChildren))
		assert.Contains(t, msg, "record has active children")
		assert.Contains(t, msg, "--force")
	})

	t.Run("user_error_suggestion", func(t *testing.T) {
		msg := FormatError(NewUserError("No ids given", "Pass at least one id"))
		assert.Equal(t, "No ids given\nPass at least one id", msg)
	})

	t.Run("no_suggestion", func(t *testing.T) {
		assert.Equal(t, "boom", FormatError(errors.New("boom")))
	})
}

// =============================================================================
// Stack Tests
// =============================================================================

func TestWithStack(t *testing.T) {
	assert.Nil(t, WithStack(nil, "op"))

	base := errors.New("base")
	err := WithStack(base, "records.delete_task")
	assert.True(t, errors.Is(err, base))

	stack := GetStack(err)
	require.NotEmpty(t, stack)
	assert.True(t, strings.Contains(stack[0].Function, "TestWithStack"))

	again := WithStack(err, "outer")
	assert.Same(t, err, again)
}

func TestChainAndRootCause(t *testing.T) {
	base := errors.New("base")
	err := WithContext(Wrap(base, "middle"), "outer")

	chain := Chain(err)
	require.Len(t, chain, 3)
	assert.Equal(t, "outer: middle: base", chain[0])
	assert.Equal(t, base, RootCause(err))
}
