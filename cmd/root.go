// Package cmd provides the CLI commands for timesheets.
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/logging"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat  string
	flagColor   string
	flagDebug   bool
	flagAccount string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "timesheets",
	Short: "Offline-first timesheets, tasks and projects",
	Long: `Timesheets keeps projects, tasks, activities and timesheet lines for one or
more backend accounts in a local database, and tracks time with a single
pause-aware timer.

Examples:
  timesheets task list --filter this_week
  timesheets timesheet add "Homepage mockups" --task 42 --hours 1:30
  timesheets timer start 7
  timesheets timer watch
  timesheets draft summary`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if flagDebug {
			logging.InitDebug()
		} else {
			logging.Init(logging.DefaultConfig())
		}
		cmd.SetContext(logging.WithRequestID(cmd.Context(), logging.GenerateRequestID()))

		opts := runtime.DefaultOptions()
		opts.Format = output.ParseFormat(flagFormat)
		opts.ColorMode = output.ParseColorMode(flagColor)
		opts.Debug = flagDebug

		if flagAccount != "" {
			scope, err := parser.ParseAccountScope(flagAccount)
			if err != nil {
				return err
			}
			opts.Account = &scope
		}

		var err error
		ctx, err = runtime.New(cmd.Context(), opts)
		if err != nil {
			return err
		}
		ctx.Debugf("database %s, state %s", opts.DBPath, opts.StateDir)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeContext()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show the timer
		return runTimerStatus(cmd, args)
	},
}

func closeContext() error {
	if ctx == nil {
		return nil
	}
	err := ctx.Close()
	ctx = nil
	return err
}

// Execute adds all child commands to the root command and runs it.
// Errors are reported through Die.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		Die(err)
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&flagAccount, "account", "a", "",
		"Account scope: an account id, or 'all' (-1); default account when omitted")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("timesheets %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// Die prints an error, closes the stores and exits with a status that
// reflects the error kind.
func Die(err error) {
	var silent silentError
	switch {
	case errors.As(err, &silent):
	case ctx != nil && ctx.IsJSON():
		_ = ctx.JSONFormatter().PrintError(err)
	case output.ParseFormat(flagFormat) == output.FormatJSON:
		_ = output.NewJSONFormatter(output.NewFormatter()).PrintError(err)
	default:
		os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	}
	_ = closeContext()
	os.Exit(runtime.ExitCode(err))
}
