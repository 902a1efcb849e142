package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/records"
)

// projectCmd represents the project command.
var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "proj", "pj"},
	Short:   "Manage projects",
	Long: `List projects as a tree, show one project with its updates, or add projects
and sub-projects.

Examples:
  timesheets project list
  timesheets project add "Website" --color "#2E86AB" --allocated 40h
  timesheets project add "Landing page" --parent 12
  timesheets project show 3
  timesheets project update add 12 "Sprint 4" --progress 60`,
	RunE: runProjectList,
}

// Project subcommand flags.
var (
	projectAddFlagParent      string
	projectAddFlagColor       string
	projectAddFlagAllocated   string
	projectAddFlagStart       string
	projectAddFlagEnd         string
	projectAddFlagDescription string

	projectUpdateFlagStatus      string
	projectUpdateFlagProgress    int
	projectUpdateFlagDescription string
)

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with their sub-projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a project or sub-project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectShowCmd = &cobra.Command{
	Use:               "show PROJECT_ID",
	Short:             "Show a project and its updates",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProjects,
	RunE:              runProjectShow,
}

var projectHoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Show rolled-up hours per project",
	Args:  cobra.NoArgs,
	RunE:  runProjectHours,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Project status updates",
}

var projectUpdateAddCmd = &cobra.Command{
	Use:   "add PROJECT_REMOTE_ID NAME",
	Short: "Post a status update on a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectUpdateAdd,
}

func init() {
	projectAddCmd.Flags().StringVar(&projectAddFlagParent, "parent", "", "Parent project remote id")
	projectAddCmd.Flags().StringVarP(&projectAddFlagColor, "color", "c", "", "Color tag: #RRGGBB or palette index 0-11")
	projectAddCmd.Flags().StringVar(&projectAddFlagAllocated, "allocated", "", "Allocated hours (e.g. 40h, 12:30)")
	projectAddCmd.Flags().StringVar(&projectAddFlagStart, "start", "", "Planned start date")
	projectAddCmd.Flags().StringVar(&projectAddFlagEnd, "end", "", "Planned end date")
	projectAddCmd.Flags().StringVarP(&projectAddFlagDescription, "description", "d", "", "Description")

	projectUpdateAddCmd.Flags().StringVar(&projectUpdateFlagStatus, "status", "on_track", "Status: on_track, at_risk, off_track, on_hold, done")
	projectUpdateAddCmd.Flags().IntVar(&projectUpdateFlagProgress, "progress", 0, "Progress percentage 0-100")
	projectUpdateAddCmd.Flags().StringVarP(&projectUpdateFlagDescription, "description", "d", "", "Description")

	projectUpdateCmd.AddCommand(projectUpdateAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectHoursCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	views, err := ctx.Records.Projects(cmd.Context(), scope(cmd))
	if err != nil {
		return err
	}
	tree := records.BuildProjectTree(views)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintProjectTree(tree)
	}
	ctx.CLIFormatter().PrintProjectTree(tree)
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	parent, err := parseRefFlag(projectAddFlagParent)
	if err != nil {
		return err
	}
	start, err := optionalDate(projectAddFlagStart)
	if err != nil {
		return err
	}
	end, err := optionalDate(projectAddFlagEnd)
	if err != nil {
		return err
	}
	var allocated float64
	if projectAddFlagAllocated != "" {
		if allocated, err = parser.ParseHours(projectAddFlagAllocated); err != nil {
			return err
		}
	}

	p := &model.Project{
		Syncable:       model.Syncable{AccountID: writeAccount(cmd)},
		Name:           args[0],
		Description:    projectAddFlagDescription,
		ParentID:       parent,
		PlannedStart:   start,
		PlannedEnd:     end,
		AllocatedHours: allocated,
		Color:          projectAddFlagColor,
	}
	r := ctx.Records.CreateProject(cmd.Context(), p)
	return report(r, r.Result)
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	id, err := parser.ParseID(args[0])
	if err != nil {
		return err
	}
	c := cmd.Context()
	v, err := ctx.Records.Project(c, id)
	if err != nil {
		return err
	}
	updates, err := ctx.Records.ProjectUpdates(c, id)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintProject(v, updates)
	}
	desc := ""
	if v.Description != "" {
		desc = ctx.Formatter.RenderMarkdown(output.PlainDescription(v.Description))
	}
	ctx.CLIFormatter().PrintProject(v, updates, desc)
	return nil
}

func runProjectHours(cmd *cobra.Command, args []string) error {
	if ctx.IsJSON() {
		hours, err := ctx.Records.ProjectHours(cmd.Context(), scope(cmd))
		if err != nil {
			return err
		}
		return ctx.Formatter.JSON(hours)
	}
	views, err := ctx.Records.Projects(cmd.Context(), scope(cmd))
	if err != nil {
		return err
	}

	cli := ctx.CLIFormatter()
	if len(views) == 0 {
		cli.Muted("No projects.")
		return nil
	}
	rows := make([]output.TableRow, 0, len(views))
	for _, v := range views {
		progress := ""
		if v.AllocatedHours > 0 {
			progress = output.ProgressBar(100*v.SpentHours/v.AllocatedHours, 12)
		}
		rows = append(rows, output.TableRow{Columns: []string{
			fmt.Sprint(v.ID), cli.Swatch(v.InheritedColor) + " " + v.Name,
			cli.Hours(v.SpentHours), cli.Hours(v.AllocatedHours), progress,
		}})
	}
	cli.PrintTable([]string{"ID", "PROJECT", "SPENT", "ALLOCATED", ""}, rows)
	return nil
}

func runProjectUpdateAdd(cmd *cobra.Command, args []string) error {
	projectID, err := parser.ParseRef(args[0])
	if err != nil {
		return err
	}
	u := &model.ProjectUpdate{
		Syncable:    model.Syncable{AccountID: writeAccount(cmd)},
		ProjectID:   projectID,
		Name:        args[1],
		Status:      projectUpdateFlagStatus,
		Progress:    projectUpdateFlagProgress,
		Description: projectUpdateFlagDescription,
	}
	r := ctx.Records.CreateProjectUpdate(cmd.Context(), u)
	return report(r, r.Result)
}
