// Package config provides centralized configuration for timesheets runtime values.
//
// Values start from defaults, are overridden by an optional YAML file
// ($XDG_CONFIG_HOME/timesheets/config.yaml), then by TIMESHEETS_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is used for config, data and state directories.
const AppName = "timesheets"

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// Storage configuration
	Storage StorageConfig

	// Drafts configuration
	Drafts DraftsConfig

	// Filter configuration
	Filter FilterConfig

	// Timer configuration
	Timer TimerConfig
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// DatabasePath is the SQLite database file. ":memory:" keeps everything in memory.
	// Default: $XDG_DATA_HOME/timesheets/timesheets.db
	DatabasePath string

	// StateDir is the badger directory holding the active timer between runs.
	// Default: $XDG_STATE_HOME/timesheets/state
	StateDir string
}

// DraftsConfig holds draft maintenance configuration.
type DraftsConfig struct {
	// MaxAge is how long an untouched draft survives "draft cleanup".
	// Default: 7 days
	MaxAge time.Duration
}

// FilterConfig holds task filter configuration.
type FilterConfig struct {
	// WeekStart is the first day of "this_week" and "next_week".
	// Default: Monday
	WeekStart time.Weekday
}

// TimerConfig holds timer configuration.
type TimerConfig struct {
	// TickInterval is the refresh rate of the live timer view.
	// Default: 1s
	TickInterval time.Duration
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Storage: StorageConfig{
			DatabasePath: filepath.Join(xdg.DataHome, AppName, AppName+".db"),
			StateDir:     filepath.Join(xdg.StateHome, AppName, "state"),
		},
		Drafts: DraftsConfig{
			MaxAge: 7 * 24 * time.Hour,
		},
		Filter: FilterConfig{
			WeekStart: time.Monday,
		},
		Timer: TimerConfig{
			TickInterval: time.Second,
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via file and environment.
var Global = initGlobal()

// initGlobal initializes the global config with defaults, file and environment overrides.
func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	// A broken config file must not stop the CLI; the env and defaults still apply.
	_ = cfg.LoadFile(DefaultFilePath())
	cfg.loadFromEnv()
	return cfg
}

// DefaultFilePath returns the config file location under the XDG base directories.
func DefaultFilePath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// fileConfig mirrors the YAML layout. Empty values keep the current setting.
type fileConfig struct {
	Storage struct {
		Database string `yaml:"database"`
		StateDir string `yaml:"state_dir"`
	} `yaml:"storage"`
	Drafts struct {
		MaxAge string `yaml:"max_age"`
	} `yaml:"drafts"`
	Filter struct {
		WeekStart string `yaml:"week_start"`
	} `yaml:"filter"`
	Timer struct {
		TickInterval string `yaml:"tick_interval"`
	} `yaml:"timer"`
}

// LoadFile applies overrides from a YAML file. A missing file is not an error.
func (c *RuntimeConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Storage.Database != "" {
		c.Storage.DatabasePath = fc.Storage.Database
	}
	if fc.Storage.StateDir != "" {
		c.Storage.StateDir = fc.Storage.StateDir
	}
	if fc.Drafts.MaxAge != "" {
		d, err := ParseAge(fc.Drafts.MaxAge)
		if err != nil {
			return fmt.Errorf("drafts.max_age: %w", err)
		}
		c.Drafts.MaxAge = d
	}
	if fc.Filter.WeekStart != "" {
		wd, err := ParseWeekday(fc.Filter.WeekStart)
		if err != nil {
			return fmt.Errorf("filter.week_start: %w", err)
		}
		c.Filter.WeekStart = wd
	}
	if fc.Timer.TickInterval != "" {
		d, err := time.ParseDuration(fc.Timer.TickInterval)
		if err != nil {
			return fmt.Errorf("timer.tick_interval: %w", err)
		}
		c.Timer.TickInterval = d
	}
	return nil
}

// MarshalYAML renders the configuration in the config file layout.
func (c *RuntimeConfig) MarshalYAML() (any, error) {
	var fc fileConfig
	fc.Storage.Database = c.Storage.DatabasePath
	fc.Storage.StateDir = c.Storage.StateDir
	fc.Drafts.MaxAge = formatAge(c.Drafts.MaxAge)
	fc.Filter.WeekStart = strings.ToLower(c.Filter.WeekStart.String())
	fc.Timer.TickInterval = c.Timer.TickInterval.String()
	return fc, nil
}

// WriteFile writes the configuration to path, creating its directory.
func (c *RuntimeConfig) WriteFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// formatAge prints whole days as "7d", anything else as a Go duration.
func formatAge(d time.Duration) string {
	const day = 24 * time.Hour
	if d > 0 && d%day == 0 {
		return strconv.Itoa(int(d/day)) + "d"
	}
	return d.String()
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	if v := os.Getenv("TIMESHEETS_DATABASE"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("TIMESHEETS_STATE_DIR"); v != "" {
		c.Storage.StateDir = v
	}
	if v := os.Getenv("TIMESHEETS_DRAFT_MAX_AGE"); v != "" {
		if d, err := ParseAge(v); err == nil {
			c.Drafts.MaxAge = d
		}
	}
	if v := os.Getenv("TIMESHEETS_WEEK_START"); v != "" {
		if wd, err := ParseWeekday(v); err == nil {
			c.Filter.WeekStart = wd
		}
	}
	if v := os.Getenv("TIMESHEETS_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timer.TickInterval = d
		}
	}
}

// ParseAge parses a Go duration or a whole number of days such as "7d".
func ParseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative age %q", s)
	}
	return d, nil
}

// ParseWeekday parses an English weekday name, its three letter prefix, or 0-6.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// ReloadFromEnv reloads configuration from environment variables.
// This is useful for testing or when environment variables change.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}
