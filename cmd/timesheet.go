package cmd

import (
	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/records"
)

// timesheetCmd represents the timesheet command.
var timesheetCmd = &cobra.Command{
	Use:     "timesheet",
	Aliases: []string{"timesheets", "ts", "line"},
	Short:   "Manage timesheet lines",
	Long: `List, add and delete timesheet lines. Logging against a task fills the
project, sub-project, task and subtask from the task hierarchy.

Examples:
  timesheets timesheet list
  timesheets timesheet list --today
  timesheets timesheet add "Homepage mockups" --task 42 --hours 1:30
  timesheets timesheet add "Planning" --project 12 --hours 45m --quadrant plan`,
	RunE: runTimesheetList,
}

// Timesheet subcommand flags.
var (
	timesheetListFlagToday bool

	timesheetAddFlagTask     string
	timesheetAddFlagProject  string
	timesheetAddFlagUser     string
	timesheetAddFlagHours    string
	timesheetAddFlagDate     string
	timesheetAddFlagQuadrant string
)

var timesheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List timesheet lines",
	Args:  cobra.NoArgs,
	RunE:  runTimesheetList,
}

var timesheetAddCmd = &cobra.Command{
	Use:   "add DESCRIPTION",
	Short: "Add a timesheet line",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimesheetAdd,
}

var timesheetShowCmd = &cobra.Command{
	Use:               "show TIMESHEET_ID",
	Short:             "Show a timesheet line",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTimesheets,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		v, err := ctx.Records.Timesheet(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(v, func(c *output.CLIFormatter) { c.PrintTimesheet(v) })
	},
}

var timesheetDeleteCmd = &cobra.Command{
	Use:               "delete TIMESHEET_ID",
	Aliases:           []string{"rm"},
	Short:             "Delete a timesheet line",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTimesheets,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Records.DeleteTimesheet(cmd.Context(), id)
		return report(r, r)
	},
}

func init() {
	timesheetListCmd.Flags().BoolVar(&timesheetListFlagToday, "today", false, "Only lines recorded today")

	timesheetAddCmd.Flags().StringVar(&timesheetAddFlagTask, "task", "", "Task remote id")
	timesheetAddCmd.Flags().StringVar(&timesheetAddFlagProject, "project", "", "Project remote id (ignored with --task)")
	timesheetAddCmd.Flags().StringVar(&timesheetAddFlagUser, "user", "", "User remote id")
	timesheetAddCmd.Flags().StringVar(&timesheetAddFlagHours, "hours", "0", "Hours spent (e.g. 1:30, 1.5, 90m)")
	timesheetAddCmd.Flags().StringVar(&timesheetAddFlagDate, "date", "", "Date of the work (default today)")
	timesheetAddCmd.Flags().StringVarP(&timesheetAddFlagQuadrant, "quadrant", "q", "do",
		"Eisenhower quadrant: do, plan, delegate, delete or 0-3")

	timesheetCmd.AddCommand(timesheetListCmd)
	timesheetCmd.AddCommand(timesheetAddCmd)
	timesheetCmd.AddCommand(timesheetShowCmd)
	timesheetCmd.AddCommand(timesheetDeleteCmd)
	rootCmd.AddCommand(timesheetCmd)
}

func runTimesheetList(cmd *cobra.Command, args []string) error {
	var views []*model.TimesheetView
	var err error
	if timesheetListFlagToday {
		views, err = todayLines(cmd.Context(), scope(cmd))
	} else {
		views, err = ctx.Records.Timesheets(cmd.Context(), scope(cmd))
	}
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimesheets(views)
	}
	ctx.CLIFormatter().PrintTimesheets(views)
	return nil
}

func runTimesheetAdd(cmd *cobra.Command, args []string) error {
	task, err := parseRefFlag(timesheetAddFlagTask)
	if err != nil {
		return err
	}
	project, err := parseRefFlag(timesheetAddFlagProject)
	if err != nil {
		return err
	}
	user, err := parseRefFlag(timesheetAddFlagUser)
	if err != nil {
		return err
	}
	hours, err := parser.ParseHours(timesheetAddFlagHours)
	if err != nil {
		return err
	}
	quadrant, err := parser.ParseQuadrant(timesheetAddFlagQuadrant)
	if err != nil {
		return err
	}
	date := now()
	if timesheetAddFlagDate != "" {
		if date, err = parser.ParseDate(timesheetAddFlagDate, now()); err != nil {
			return err
		}
	}

	r := ctx.Records.CreateTimesheet(cmd.Context(), records.TimesheetInput{
		AccountID: writeAccount(cmd),
		Name:      args[0],
		TaskID:    task,
		ProjectID: project,
		UserID:    user,
		Quadrant:  quadrant,
		Hours:     hours,
		Date:      date,
	})
	return report(r, r.Result)
}
