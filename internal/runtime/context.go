// Package runtime provides the application runtime context for timesheets.
package runtime

import (
	"context"
	"time"

	"github.com/timesheets-app/timesheets/internal/account"
	"github.com/timesheets-app/timesheets/internal/config"
	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/scheduler"
	"github.com/timesheets-app/timesheets/internal/storage"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	State     *storage.StateStore
	Formatter *output.Formatter

	// Services
	Accounts  *account.Manager
	Records   *records.Service
	Drafts    *draft.Manager
	Timer     *timer.Service
	Reminders *scheduler.ReminderChecker

	// Account is the --account scope, nil when the default account applies.
	Account *int64

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	StateDir  string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Account   *int64
	WeekStart time.Weekday
	Debug     bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultOptions returns runtime options from the global configuration.
func DefaultOptions() Options {
	cfg := config.Global
	return Options{
		DBPath:    cfg.Storage.DatabasePath,
		StateDir:  cfg.Storage.StateDir,
		InMemory:  cfg.Storage.DatabasePath == storage.MemoryPath,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		WeekStart: cfg.Filter.WeekStart,
		Debug:     false,
	}
}

// New creates a new runtime context. An in-memory database also keeps the
// timer state in memory.
func New(ctx context.Context, opts Options) (*Context, error) {
	if opts.DBPath == storage.MemoryPath {
		opts.InMemory = true
	}

	db, err := storage.Open(ctx, storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, WrapDiskFullError(err, "open", opts.DBPath)
	}

	state, err := storage.OpenState(storage.StateOptions{
		Dir:      opts.StateDir,
		InMemory: opts.InMemory,
	})
	if err != nil {
		_ = db.Close()
		return nil, WrapDiskFullError(err, "open", opts.StateDir)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	rec := records.New(db).WithClock(now).WithWeekStart(opts.WeekStart)

	return &Context{
		DB:        db,
		State:     state,
		Formatter: formatter,
		Accounts:  account.New(db),
		Records:   rec,
		Drafts:    draft.New(db).WithClock(now),
		Timer:     timer.New(db, storage.NewTimerStateRepo(state)).WithClock(now),
		Reminders: scheduler.NewReminderChecker(db, rec).WithClock(now),
		Account:   opts.Account,
		Debug:     opts.Debug,
	}, nil
}

// Close closes both stores.
func (c *Context) Close() error {
	var firstErr error
	if c.State != nil {
		firstErr = c.State.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Scope resolves the account scope for list commands: the --account flag,
// else the default account.
func (c *Context) Scope(ctx context.Context) int64 {
	return c.Accounts.Scope(ctx, c.Account)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI or plain.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format != output.FormatJSON
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
