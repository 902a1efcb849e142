// Package logging provides structured logging for the timesheets CLI.
// It wraps log/slog with a package-level logger that commands reconfigure
// from the --debug flag.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/timesheets-app/timesheets/internal/errors"
)

var (
	// defaultLogger is the package-level logger instance.
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex

	// Debug indicates if debug mode is enabled.
	Debug bool
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level // Minimum log level
	JSON      bool       // Use JSON output format
	Output    io.Writer  // Output destination (default: stderr)
	AddSource bool       // Include source file and line number
}

// DefaultConfig returns the default logger configuration.
// Only warnings reach the terminal so command output stays clean.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		JSON:   false,
		Output: os.Stderr,
	}
}

// DebugConfig returns a configuration suitable for debug mode.
func DebugConfig() Config {
	return Config{
		Level:     slog.LevelDebug,
		JSON:      true,
		Output:    os.Stderr,
		AddSource: true,
	}
}

// Init initializes the global logger with the given configuration.
func Init(cfg Config) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	Debug = cfg.Level == slog.LevelDebug
}

// InitDebug initializes the logger in debug mode with JSON output.
func InitDebug() {
	Init(DebugConfig())
}

// Logger returns the current logger instance.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// With returns a logger with additional attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(MaskArgs(args)...)
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Logger().Info(msg, MaskArgs(args)...)
}

// DebugLog logs at DEBUG level.
func DebugLog(msg string, args ...any) {
	Logger().Debug(msg, MaskArgs(args)...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, MaskArgs(args)...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Logger().Error(msg, MaskArgs(args)...)
}

// Common structured logging fields.
const (
	KeyRequestID = "request_id"
	KeyOperation = "op"
	KeyError     = "error"
	KeyKind      = "kind"
	KeyStack     = "stack"
	KeyAccount   = "account_id"
	KeyProject   = "project_id"
	KeyTask      = "task_id"
	KeyTimesheet = "timesheet_id"
	KeyDraft     = "draft_id"
	KeyFormType  = "form_type"
	KeyStatus    = "status"
	KeyCount     = "count"
)

// LogFailure records a failure that an entry point converted into a result.
// The error kind is always attached; debug mode adds the captured stack.
func LogFailure(ctx context.Context, op string, err error, args ...any) {
	if err == nil {
		return
	}
	attrs := append([]any{
		KeyOperation, op,
		KeyError, err.Error(),
		KeyKind, errors.KindOf(err).String(),
	}, MaskArgs(args)...)
	if Debug {
		if stack := errors.GetStack(err); len(stack) > 0 {
			frames := make([]string, len(stack))
			for i, f := range stack {
				frames[i] = f.String()
			}
			attrs = append(attrs, KeyStack, frames)
		}
	}

	level := slog.LevelWarn
	if errors.KindOf(err) == errors.KindStorage || errors.KindOf(err) == errors.KindUnknown {
		level = slog.LevelError
	}
	LoggerFromContext(ctx).Log(ctx, level, "operation failed", attrs...)
}

// LogOperation logs a completed operation at debug level.
func LogOperation(ctx context.Context, op string, args ...any) {
	allArgs := append([]any{KeyOperation, op}, MaskArgs(args)...)
	LoggerFromContext(ctx).DebugContext(ctx, "operation", allArgs...)
}
