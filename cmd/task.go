package cmd

import (
	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/config"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/records"
)

// taskCmd represents the task command.
var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "tk"},
	Short:   "Manage tasks",
	Long: `List, filter, add and delete tasks. Subtasks are listed under their parent
task, and a parent stays visible when only one of its subtasks matches.

Examples:
  timesheets task list --filter this_week
  timesheets task list --search homepage --assignee 2:7
  timesheets task add "Homepage mockups" --project 12 --deadline friday
  timesheets task delete 4 5 6 --force`,
	RunE: runTaskList,
}

// Task subcommand flags.
var (
	taskListFlagFilter   string
	taskListFlagSearch   string
	taskListFlagAssignee []string
	taskListFlagToday    string
	taskListFlagFlat     bool

	taskAddFlagProject     string
	taskAddFlagSubProject  string
	taskAddFlagParent      string
	taskAddFlagAssignee    []string
	taskAddFlagStart       string
	taskAddFlagEnd         string
	taskAddFlagDeadline    string
	taskAddFlagPlanned     string
	taskAddFlagDescription string

	taskDeleteFlagForce bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a task or subtask",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var taskShowCmd = &cobra.Command{
	Use:               "show TASK_ID",
	Short:             "Show a task",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTasks,
	RunE:              runTaskShow,
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete TASK_ID...",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Long: `Delete one or more tasks along with their timesheet lines and drafts.
A task with live subtasks is refused unless --force is given; with --force the
subtasks are kept and lose their parent.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTasks,
	RunE:              runTaskDelete,
}

func init() {
	taskListCmd.Flags().StringVar(&taskListFlagFilter, "filter", "all",
		"Date filter: all, today, this_week, next_week, this_month, overdue, later, done")
	taskListCmd.Flags().StringVarP(&taskListFlagSearch, "search", "s", "", "Search name, project and description")
	taskListCmd.Flags().StringSliceVar(&taskListFlagAssignee, "assignee", nil, "Assignee user id, or ACCOUNT:USER")
	taskListCmd.Flags().StringVar(&taskListFlagToday, "today", "", "Evaluate date filters as of this date")
	taskListCmd.Flags().BoolVar(&taskListFlagFlat, "flat", false, "List tasks without nesting")

	taskAddCmd.Flags().StringVarP(&taskAddFlagProject, "project", "p", "", "Project remote id")
	taskAddCmd.Flags().StringVar(&taskAddFlagSubProject, "sub-project", "", "Sub-project remote id")
	taskAddCmd.Flags().StringVar(&taskAddFlagParent, "parent", "", "Parent task remote id")
	taskAddCmd.Flags().StringSliceVar(&taskAddFlagAssignee, "assignee", nil, "Assignee user remote ids")
	taskAddCmd.Flags().StringVar(&taskAddFlagStart, "start", "", "Start date")
	taskAddCmd.Flags().StringVar(&taskAddFlagEnd, "end", "", "End date")
	taskAddCmd.Flags().StringVar(&taskAddFlagDeadline, "deadline", "", "Deadline")
	taskAddCmd.Flags().StringVar(&taskAddFlagPlanned, "planned", "", "Planned hours (e.g. 6h, 1:30)")
	taskAddCmd.Flags().StringVarP(&taskAddFlagDescription, "description", "d", "", "Description")

	taskDeleteCmd.Flags().BoolVar(&taskDeleteFlagForce, "force", false, "Delete even when subtasks exist")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	kind, err := filter.ParseKind(taskListFlagFilter)
	if err != nil {
		return err
	}
	assignees, err := parser.ParseAssignees(taskListFlagAssignee)
	if err != nil {
		return err
	}
	asOf := now()
	if taskListFlagToday != "" {
		if asOf, err = parser.ParseDate(taskListFlagToday, now()); err != nil {
			return err
		}
	}

	views, err := ctx.Records.FilterTasks(cmd.Context(), filter.Options{
		Kind:      kind,
		Search:    taskListFlagSearch,
		Scope:     scope(cmd),
		Assignees: assignees,
		Now:       asOf,
		WeekStart: config.Global.Filter.WeekStart,
	})
	if err != nil {
		return err
	}

	if taskListFlagFlat {
		if ctx.IsJSON() {
			return output.PrintList(ctx.JSONFormatter(), views)
		}
		flat := make([]*records.TaskNode, len(views))
		for i, v := range views {
			flat[i] = &records.TaskNode{TaskView: v}
		}
		ctx.CLIFormatter().PrintTaskTree(flat)
		return nil
	}

	tree := records.BuildTaskTree(views)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTaskTree(tree)
	}
	ctx.CLIFormatter().PrintTaskTree(tree)
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	project, err := parseRefFlag(taskAddFlagProject)
	if err != nil {
		return err
	}
	subProject, err := parseRefFlag(taskAddFlagSubProject)
	if err != nil {
		return err
	}
	parent, err := parseRefFlag(taskAddFlagParent)
	if err != nil {
		return err
	}
	var assignees model.IDSet
	if len(taskAddFlagAssignee) > 0 {
		ids, err := parser.ParseIDs(taskAddFlagAssignee)
		if err != nil {
			return err
		}
		assignees = model.IDSet(ids)
	}

	t := &model.Task{
		Syncable:     model.Syncable{AccountID: writeAccount(cmd)},
		Name:         args[0],
		Description:  taskAddFlagDescription,
		ProjectID:    project,
		SubProjectID: subProject,
		ParentID:     parent,
		AssigneeIDs:  assignees,
	}
	if t.StartDate, err = optionalDate(taskAddFlagStart); err != nil {
		return err
	}
	if t.EndDate, err = optionalDate(taskAddFlagEnd); err != nil {
		return err
	}
	if t.Deadline, err = optionalDate(taskAddFlagDeadline); err != nil {
		return err
	}
	if taskAddFlagPlanned != "" {
		if t.PlannedHours, err = parser.ParseHours(taskAddFlagPlanned); err != nil {
			return err
		}
	}

	r := ctx.Records.CreateTask(cmd.Context(), t)
	return report(r, r.Result)
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	id, err := parser.ParseID(args[0])
	if err != nil {
		return err
	}
	v, err := ctx.Records.Task(cmd.Context(), id)
	if err != nil {
		return err
	}
	return render(v, func(c *output.CLIFormatter) {
		desc := ""
		if v.Description != "" {
			desc = ctx.Formatter.RenderMarkdown(output.PlainDescription(v.Description))
		}
		c.PrintTask(v, desc)
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	ids, err := parser.ParseIDs(args)
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		r := ctx.Records.MarkTaskAsDeleted(cmd.Context(), ids[0], taskDeleteFlagForce)
		if ctx.IsJSON() {
			if err := ctx.Formatter.JSON(r); err != nil {
				return err
			}
		} else {
			ctx.CLIFormatter().PrintDeleteTask(r)
		}
		if !r.Success {
			return silentError{resultError{r.Result}}
		}
		return nil
	}

	r := ctx.Records.MarkMultipleTasksAsDeleted(cmd.Context(), ids, taskDeleteFlagForce)
	if ctx.IsJSON() {
		if err := ctx.Formatter.JSON(r); err != nil {
			return err
		}
	} else {
		ctx.CLIFormatter().PrintBatchDelete(r)
	}
	if !r.Success {
		return silentError{resultError{r.Result}}
	}
	return nil
}
