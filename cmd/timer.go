package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/config"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/timer"
	"github.com/timesheets-app/timesheets/internal/tui"
)

// timerCmd represents the timer command.
var timerCmd = &cobra.Command{
	Use:     "timer",
	Aliases: []string{"t"},
	Short:   "Track time on a timesheet line",
	Long: `Start, pause, resume and stop the single timer. The timer survives restarts
and writes its elapsed time into the timesheet line when stopped.

Examples:
  timesheets timer start 12
  timesheets timer pause
  timesheets timer stop
  timesheets timer watch`,
	RunE: runTimerStatus,
}

var timerStartCmd = &cobra.Command{
	Use:               "start TIMESHEET_ID",
	Short:             "Start the timer on a timesheet line",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTimesheets,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		return reportTimer(ctx.Timer.Start(cmd.Context(), id))
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportTimer(ctx.Timer.Pause(cmd.Context()))
	},
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportTimer(ctx.Timer.Resume(cmd.Context()))
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and record its time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportTimer(ctx.Timer.Stop(cmd.Context()))
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the timer without recording time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportTimer(ctx.Timer.Reset(cmd.Context()))
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer",
	Args:  cobra.NoArgs,
	RunE:  runTimerStatus,
}

var timerWatchFlagLines int

var timerWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live timer view with today's lines",
	Long: `Open a full screen view of the timer and today's timesheet lines.

Keys:
  space  pause or resume
  s      stop
  r      refresh
  q      quit`,
	Args: cobra.NoArgs,
	RunE: runTimerWatch,
}

func init() {
	timerWatchCmd.Flags().IntVar(&timerWatchFlagLines, "lines", 8, "Maximum timesheet lines shown")

	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerResumeCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerResetCmd)
	timerCmd.AddCommand(timerStatusCmd)
	timerCmd.AddCommand(timerWatchCmd)
	rootCmd.AddCommand(timerCmd)
}

func runTimerStatus(cmd *cobra.Command, args []string) error {
	return reportTimer(ctx.Timer.Status(cmd.Context()))
}

// reportTimer prints a timer status and returns a failed transition as the
// command error.
func reportTimer(st timer.Status) error {
	if ctx.IsJSON() {
		if err := ctx.JSONFormatter().PrintTimer(st); err != nil {
			return err
		}
		if !st.Success {
			return silentError{resultError{st.Result}}
		}
		return nil
	}
	if !st.Success {
		return resultError{st.Result}
	}
	ctx.CLIFormatter().PrintTimer(st)
	return nil
}

func runTimerWatch(cmd *cobra.Command, args []string) error {
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimer(ctx.Timer.Status(cmd.Context()))
	}
	sc := scope(cmd)
	lines := func(c context.Context) ([]*model.TimesheetView, error) {
		return todayLines(c, sc)
	}
	return tui.Run(cmd.Context(), tui.WatchConfig{
		Timer:        ctx.Timer,
		Lines:        lines,
		TickInterval: config.Global.Timer.TickInterval,
		MaxLines:     timerWatchFlagLines,
	})
}

// todayLines returns the timesheet lines recorded today.
func todayLines(c context.Context, scope int64) ([]*model.TimesheetView, error) {
	views, err := ctx.Records.Timesheets(c, scope)
	if err != nil {
		return nil, err
	}
	today := filter.TodayWindow(parser.StartOfDay(now()))
	var out []*model.TimesheetView
	for _, v := range views {
		if today.Contains(v.RecordDate) {
			out = append(out, v)
		}
	}
	return out, nil
}

