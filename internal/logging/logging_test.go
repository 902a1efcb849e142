package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/errors"
)

func captureJSON(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, JSON: true, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.AddSource)
}

func TestInit(t *testing.T) {
	t.Run("debug_level_sets_flag", func(t *testing.T) {
		captureJSON(t, slog.LevelDebug)
		assert.True(t, Debug)
	})

	t.Run("nil_output_uses_stderr", func(t *testing.T) {
		Init(Config{Level: slog.LevelInfo})
		t.Cleanup(func() { Init(DefaultConfig()) })
		assert.NotNil(t, Logger())
		assert.False(t, Debug)
	})
}

// ===== Request Context Tests =====

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()
	assert.Len(t, id1, 16)
	assert.NotEqual(t, id1, id2)
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	//nolint:staticcheck
	assert.Equal(t, "", RequestIDFromContext(nil))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(NewRequestContext()))
}

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)

	LoggerFromContext(WithRequestID(context.Background(), "req-1")).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[KeyRequestID])
}

// ===== Failure Logging Tests =====

func TestLogFailure(t *testing.T) {
	t.Run("not_found_logs_warning_with_kind", func(t *testing.T) {
		buf := captureJSON(t, slog.LevelInfo)

		LogFailure(context.Background(), "load_draft", errors.ErrDraftNotFound, KeyDraft, int64(4))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "load_draft", entry[KeyOperation])
		assert.Equal(t, "not_found", entry[KeyKind])
		assert.EqualValues(t, 4, entry[KeyDraft])
	})

	t.Run("storage_failure_logs_error_with_stack_in_debug", func(t *testing.T) {
		buf := captureJSON(t, slog.LevelDebug)

		err := errors.WithStack(errors.Storage("save_draft", assert.AnError), "draft.save")
		LogFailure(context.Background(), "save_draft", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "storage", entry[KeyKind])
		assert.NotEmpty(t, entry[KeyStack])
	})

	t.Run("nil_error_is_ignored", func(t *testing.T) {
		buf := captureJSON(t, slog.LevelDebug)
		LogFailure(context.Background(), "noop", nil)
		assert.Empty(t, buf.String())
	})
}

// ===== Masking Tests =====

func TestMaskArgs(t *testing.T) {
	args := MaskArgs([]any{"name", "Work", "api_key", "supersecretvalue", "count", 3})
	assert.Equal(t, "Work", args[1])
	assert.Equal(t, "********", args[3])
	assert.Equal(t, 3, args[5])
}

func TestMaskMap(t *testing.T) {
	masked := MaskMap(map[string]any{
		"name":    "Task",
		"api_key": "abcdef",
		"nested":  map[string]any{"password": "pw"},
	})
	assert.Equal(t, "Task", masked["name"])
	assert.Equal(t, "******", masked["api_key"])
	assert.Equal(t, "**", masked["nested"].(map[string]any)["password"])
}

func TestMaskPartial(t *testing.T) {
	assert.Equal(t, "abc***", MaskPartial("abcdefgh", 3))
	assert.Equal(t, "**", MaskPartial("ab", 3))
	assert.True(t, strings.HasPrefix(MaskPartial("https://erp.example.com", 8), "https://"))
}

func TestIsSensitiveField(t *testing.T) {
	assert.True(t, IsSensitiveField("API_KEY"))
	assert.True(t, IsSensitiveField("user_password"))
	assert.False(t, IsSensitiveField("username"))
}
