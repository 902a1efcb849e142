package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/storage"
)

func newMemoryContext(t *testing.T, opts Options) *Context {
	t.Helper()
	opts.InMemory = true
	rc, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

// =============================================================================
// Context Tests
// =============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.NotEmpty(t, opts.DBPath)
	assert.Equal(t, output.FormatCLI, opts.Format)
	assert.Equal(t, output.ColorAuto, opts.ColorMode)
	assert.Nil(t, opts.Account)
	assert.False(t, opts.Debug)
}

func TestNew(t *testing.T) {
	rc := newMemoryContext(t, Options{})

	assert.NotNil(t, rc.DB)
	assert.NotNil(t, rc.State)
	assert.NotNil(t, rc.Formatter)
	assert.NotNil(t, rc.Accounts)
	assert.NotNil(t, rc.Records)
	assert.NotNil(t, rc.Drafts)
	assert.NotNil(t, rc.Timer)
}

func TestNewWithOptions(t *testing.T) {
	rc := newMemoryContext(t, Options{
		Format:    output.FormatJSON,
		ColorMode: output.ColorNever,
		Debug:     true,
	})

	assert.Equal(t, output.FormatJSON, rc.Formatter.Format)
	assert.Equal(t, output.ColorNever, rc.Formatter.ColorMode)
	assert.True(t, rc.Debug)
}

func TestNewMemoryPath(t *testing.T) {
	rc, err := New(context.Background(), Options{DBPath: storage.MemoryPath})
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, storage.MemoryPath, rc.DB.Path())
}

func TestNewOnDisk(t *testing.T) {
	dir := t.TempDir()
	rc, err := New(context.Background(), Options{
		DBPath:   filepath.Join(dir, "timesheets.db"),
		StateDir: filepath.Join(dir, "state"),
	})
	require.NoError(t, err)
	assert.NoError(t, rc.Close())
}

func TestContextClose(t *testing.T) {
	rc, err := New(context.Background(), Options{InMemory: true})
	require.NoError(t, err)
	assert.NoError(t, rc.Close())

	// Closing an empty context should be safe
	nilCtx := &Context{}
	assert.NoError(t, nilCtx.Close())
}

func TestContextScope(t *testing.T) {
	ctx := context.Background()

	rc := newMemoryContext(t, Options{})
	assert.Equal(t, model.LocalAccountID, rc.Scope(ctx))

	all := model.AllAccounts
	rc = newMemoryContext(t, Options{Account: &all})
	assert.Equal(t, model.AllAccounts, rc.Scope(ctx))
}

func TestContextUsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	rc := newMemoryContext(t, Options{Now: func() time.Time { return fixed }})

	st := rc.Timer.Status(context.Background())
	assert.True(t, st.Success)
	assert.Equal(t, model.TimerIdle, st.State)
}

func TestContextIsJSON(t *testing.T) {
	t.Run("json_format", func(t *testing.T) {
		rc := newMemoryContext(t, Options{Format: output.FormatJSON})
		assert.True(t, rc.IsJSON())
		assert.False(t, rc.IsCLI())
	})

	t.Run("plain_format", func(t *testing.T) {
		rc := newMemoryContext(t, Options{Format: output.FormatPlain})
		assert.False(t, rc.IsJSON())
		assert.True(t, rc.IsCLI())
	})
}

func TestContextDebugf(t *testing.T) {
	t.Run("debug_enabled", func(t *testing.T) {
		var buf bytes.Buffer
		rc := newMemoryContext(t, Options{Debug: true})

		rc.Formatter.Writer = &buf
		rc.Debugf("test message %s", "arg1")

		assert.Contains(t, buf.String(), "[DEBUG]")
		assert.Contains(t, buf.String(), "test message arg1")
	})

	t.Run("debug_disabled", func(t *testing.T) {
		var buf bytes.Buffer
		rc := newMemoryContext(t, Options{})

		rc.Formatter.Writer = &buf
		rc.Debugf("test message")

		assert.Empty(t, buf.String())
	})
}

// =============================================================================
// Error Tests
// =============================================================================

func TestFormatError(t *testing.T) {
	t.Run("with_suggestion", func(t *testing.T) {
		formatted := FormatError(apperrors.ErrNoActiveTimer)
		assert.Contains(t, formatted, "no active timer")
		assert.Contains(t, formatted, "timer start")
	})

	t.Run("without_suggestion", func(t *testing.T) {
		err := errors.New("custom error")
		assert.Equal(t, "custom error", FormatError(err))
	})

	t.Run("disk_full", func(t *testing.T) {
		formatted := FormatError(NewDiskFullError("write", "", errors.New("boom")))
		assert.Contains(t, formatted, "Free up disk space")
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, ExitCode(apperrors.ErrInvalidDate))
	assert.Equal(t, 3, ExitCode(fmt.Errorf("get: %w", apperrors.ErrTaskNotFound)))
	assert.Equal(t, 4, ExitCode(apperrors.ErrHasChildren))
	assert.Equal(t, 1, ExitCode(errors.New("other")))
	assert.Equal(t, 3, ExitCode(kindedError{"not_found"}))
}

type kindedError struct{ kind string }

func (e kindedError) Error() string     { return "failed" }
func (e kindedError) ErrorKind() string { return e.kind }

// =============================================================================
// DiskFullError Tests
// =============================================================================

func TestNewDiskFullError(t *testing.T) {
	original := errors.New("underlying error")
	err := NewDiskFullError("write", "/path/to/db", original)

	assert.Equal(t, "write", err.Op)
	assert.Equal(t, "/path/to/db", err.Path)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "/path/to/db")
	assert.True(t, errors.Is(err, ErrDiskFull))
}

func TestDiskFullErrorWithoutPath(t *testing.T) {
	err := NewDiskFullError("sync", "", errors.New("underlying error"))

	assert.Contains(t, err.Error(), "sync")
	assert.NotContains(t, err.Error(), "on ")
}

func TestIsDiskFullError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", NewDiskFullError("write", "", nil), true},
		{"sentinel", ErrDiskFull, true},
		{"wrapped sentinel", fmt.Errorf("context: %w", ErrDiskFull), true},
		{"enospc errno", syscall.ENOSPC, true},
		{"sqlite full", errors.New("database or disk is full (13)"), true},
		{"message", errors.New("no space left on device"), true},
		{"regular", errors.New("connection timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDiskFullError(tt.err))
		})
	}
}

func TestWrapDiskFullError(t *testing.T) {
	t.Run("nil_error", func(t *testing.T) {
		assert.Nil(t, WrapDiskFullError(nil, "write", "/path"))
	})

	t.Run("disk_full_error", func(t *testing.T) {
		result := WrapDiskFullError(errors.New("no space left on device"), "write", "/path/to/db")

		var diskFullErr *DiskFullError
		require.True(t, errors.As(result, &diskFullErr))
		assert.Equal(t, "write", diskFullErr.Op)
	})

	t.Run("regular_error_not_wrapped", func(t *testing.T) {
		err := errors.New("connection timeout")
		assert.Equal(t, err, WrapDiskFullError(err, "write", "/path"))
	})
}
