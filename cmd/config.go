package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/timesheets-app/timesheets/internal/config"
	apperrors "github.com/timesheets-app/timesheets/internal/errors"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Show application configuration",
	Long: `Show the effective configuration. Values come from the defaults, then the
config file, then TIMESHEETS_* environment variables.

Environment:
  TIMESHEETS_DATABASE       SQLite database file, or :memory:
  TIMESHEETS_STATE_DIR      Timer state directory
  TIMESHEETS_DRAFT_MAX_AGE  Draft cleanup age (e.g. 7d)
  TIMESHEETS_WEEK_START     First day of the week
  TIMESHEETS_TICK_INTERVAL  Live timer refresh rate

Examples:
  timesheets config show
  timesheets config path
  timesheets config init`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFilePath()
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{"path": path})
		}
		ctx.Formatter.Println(path)
		return nil
	},
}

var configInitFlagForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFilePath()
		if _, err := os.Stat(path); err == nil && !configInitFlagForce {
			return apperrors.NewUserErrorWithField("path", path, "Config file already exists",
				"Use --force to overwrite it")
		}
		if err := config.Global.WriteFile(path); err != nil {
			return err
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{"path": path})
		}
		ctx.CLIFormatter().Success("Wrote " + path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitFlagForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"database":      cfg.Storage.DatabasePath,
			"state_dir":     cfg.Storage.StateDir,
			"draft_max_age": cfg.Drafts.MaxAge.String(),
			"week_start":    cfg.Filter.WeekStart.String(),
			"tick_interval": cfg.Timer.TickInterval.String(),
			"config_file":   config.DefaultFilePath(),
		})
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	cli := ctx.CLIFormatter()
	cli.Muted("# " + config.DefaultFilePath())
	cli.Print(string(data))
	return nil
}
