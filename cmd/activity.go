package cmd

import (
	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/config"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
)

// activityCmd represents the activity command.
var activityCmd = &cobra.Command{
	Use:     "activity",
	Aliases: []string{"activities", "act"},
	Short:   "Manage scheduled activities",
	Long: `List, add and complete activities. Activities can be linked to a project
or a task; the list shows where each one belongs in the project hierarchy.

Examples:
  timesheets activity list --filter today
  timesheets activity add "Call client" --task 42 --due tomorrow
  timesheets activity link task 42
  timesheets activity done 7
  timesheets activity reschedule 7 "next monday"`,
	RunE: runActivityList,
}

// Activity subcommand flags.
var (
	activityListFlagFilter string
	activityListFlagSearch string
	activityListFlagDone   bool

	activityAddFlagTask    string
	activityAddFlagProject string
	activityAddFlagDue     string
	activityAddFlagNote    string
)

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activities",
	Args:  cobra.NoArgs,
	RunE:  runActivityList,
}

var activityAddCmd = &cobra.Command{
	Use:   "add SUMMARY",
	Short: "Add an activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityAdd,
}

var activityLinkCmd = &cobra.Command{
	Use:       "link project|task REMOTE_ID",
	Short:     "Add an untitled activity due today on a project or task",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"project", "task"},
	RunE:      runActivityLink,
}

var activityShowCmd = &cobra.Command{
	Use:   "show ACTIVITY_ID",
	Short: "Show an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		v, err := ctx.Records.Activity(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(v, func(c *output.CLIFormatter) { c.PrintActivity(v) })
	},
}

var activityDoneCmd = &cobra.Command{
	Use:   "done ACTIVITY_ID",
	Short: "Mark an activity as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Records.MarkActivityDone(cmd.Context(), id)
		return report(r, r)
	},
}

var activityFollowUpCmd = &cobra.Command{
	Use:   "followup ACTIVITY_ID",
	Short: "Create a follow-up due today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Records.CreateFollowUp(cmd.Context(), id)
		return report(r, r.Result)
	},
}

var activityRescheduleCmd = &cobra.Command{
	Use:   "reschedule ACTIVITY_ID DATE",
	Short: "Move an activity's due date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		due, err := parser.ParseDate(args[1], now())
		if err != nil {
			return err
		}
		r := ctx.Records.RescheduleActivity(cmd.Context(), id, due)
		return report(r, r)
	},
}

var activityDeleteCmd = &cobra.Command{
	Use:     "delete ACTIVITY_ID",
	Aliases: []string{"rm"},
	Short:   "Delete an activity",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Records.DeleteActivity(cmd.Context(), id)
		return report(r, r)
	},
}

func init() {
	activityListCmd.Flags().StringVar(&activityListFlagFilter, "filter", "all",
		"Due filter: all, today, week, month, later, overdue, done")
	activityListCmd.Flags().StringVarP(&activityListFlagSearch, "search", "s", "", "Search summary, note and linked record")
	activityListCmd.Flags().BoolVar(&activityListFlagDone, "done", false, "Include completed activities")

	activityAddCmd.Flags().StringVar(&activityAddFlagTask, "task", "", "Linked task remote id")
	activityAddCmd.Flags().StringVar(&activityAddFlagProject, "project", "", "Linked project remote id")
	activityAddCmd.Flags().StringVar(&activityAddFlagDue, "due", "", "Due date")
	activityAddCmd.Flags().StringVarP(&activityAddFlagNote, "note", "n", "", "Note")
	activityAddCmd.MarkFlagsMutuallyExclusive("task", "project")

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityAddCmd)
	activityCmd.AddCommand(activityLinkCmd)
	activityCmd.AddCommand(activityShowCmd)
	activityCmd.AddCommand(activityDoneCmd)
	activityCmd.AddCommand(activityFollowUpCmd)
	activityCmd.AddCommand(activityRescheduleCmd)
	activityCmd.AddCommand(activityDeleteCmd)
	rootCmd.AddCommand(activityCmd)
}

func runActivityList(cmd *cobra.Command, args []string) error {
	kind, err := filter.ParseActivityKind(activityListFlagFilter)
	if err != nil {
		return err
	}

	var views []*model.ActivityView
	if kind == filter.ActivityAll && activityListFlagSearch == "" {
		views, err = ctx.Records.Activities(cmd.Context(), scope(cmd), activityListFlagDone)
	} else {
		views, err = ctx.Records.FilterActivities(cmd.Context(), scope(cmd), filter.ActivityOptions{
			Kind:      kind,
			Search:    activityListFlagSearch,
			Now:       now(),
			WeekStart: config.Global.Filter.WeekStart,
		})
	}
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), views)
	}
	ctx.CLIFormatter().PrintActivities(views)
	return nil
}

func runActivityAdd(cmd *cobra.Command, args []string) error {
	a := &model.Activity{
		Syncable: model.Syncable{AccountID: writeAccount(cmd)},
		Summary:  args[0],
		Note:     activityAddFlagNote,
	}
	switch {
	case activityAddFlagTask != "":
		ref, err := parser.ParseRef(activityAddFlagTask)
		if err != nil {
			return err
		}
		a.ResModel, a.ResID = model.ResModelTask, ref
	case activityAddFlagProject != "":
		ref, err := parser.ParseRef(activityAddFlagProject)
		if err != nil {
			return err
		}
		a.ResModel, a.ResID = model.ResModelProject, ref
	}
	due, err := optionalDate(activityAddFlagDue)
	if err != nil {
		return err
	}
	a.DueDate = due

	r := ctx.Records.CreateActivity(cmd.Context(), a)
	return report(r, r.Result)
}

func runActivityLink(cmd *cobra.Command, args []string) error {
	resModel := args[0]
	switch resModel {
	case "project":
		resModel = model.ResModelProject
	case "task":
		resModel = model.ResModelTask
	}
	ref, err := parser.ParseRef(args[1])
	if err != nil {
		return err
	}
	r := ctx.Records.CreateLinkedActivity(cmd.Context(), writeAccount(cmd), resModel, ref)
	return report(r, r.Result)
}
