package cmd

import (
	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
)

// stageCmd represents the stage command.
var stageCmd = &cobra.Command{
	Use:     "stage",
	Aliases: []string{"stages"},
	Short:   "Manage project and task stages",
	Long: `Stages are the workflow columns of projects and tasks. Records in a folded
stage are shown as folded; tasks in a done stage are never overdue.

Examples:
  timesheets stage list --kind task
  timesheets stage add "In Progress" --kind task --sequence 2
  timesheets stage add Done --kind task --fold`,
	RunE: runStageList,
}

// userCmd represents the user command.
var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Manage the users of an account",
	RunE:    runUserList,
}

// notificationCmd represents the notifications command.
var notificationCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notification", "inbox"},
	Short:   "List local notifications",
	Args:    cobra.NoArgs,
	RunE:    runNotificationList,
}

// Catalog flags.
var (
	stageFlagKind     string
	stageFlagFold     bool
	stageFlagSequence int

	userAddFlagLogin string
	userAddFlagEmail string

	notificationFlagUnread bool
)

var stageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stages",
	Args:  cobra.NoArgs,
	RunE:  runStageList,
}

var stageAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := &model.Stage{
			Syncable: model.Syncable{AccountID: writeAccount(cmd)},
			Kind:     model.StageKind(stageFlagKind),
			Name:     args[0],
			Fold:     stageFlagFold,
			Sequence: stageFlagSequence,
		}
		r := ctx.Records.CreateStage(cmd.Context(), st)
		return report(r, r.Result)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := &model.User{
			AccountID: writeAccount(cmd),
			Name:      args[0],
			Login:     userAddFlagLogin,
			Email:     userAddFlagEmail,
		}
		r := ctx.Records.CreateUser(cmd.Context(), u)
		return report(r, r.Result)
	},
}

var notificationCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Raise reminders for activities due today or overdue",
	Long: `Create one notification per open activity that is due today or overdue.
An activity is reminded at most once per day, so the command is safe to run
from cron or a shell prompt hook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := ctx.Reminders.Check(cmd.Context(), scope(cmd))
		if r.Success && ctx.IsCLI() && len(r.Created) > 0 {
			ctx.CLIFormatter().PrintNotifications(r.Created)
		}
		return report(r, r.Result)
	},
}

var notificationReadCmd = &cobra.Command{
	Use:   "read NOTIFICATION_ID",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Records.MarkNotificationRead(cmd.Context(), id)
		return report(r, r)
	},
}

func init() {
	stageCmd.PersistentFlags().StringVarP(&stageFlagKind, "kind", "k", string(model.StageKindTask), "Stage kind: project or task")
	stageAddCmd.Flags().BoolVar(&stageFlagFold, "fold", false, "Fold records in this stage")
	stageAddCmd.Flags().IntVar(&stageFlagSequence, "sequence", 0, "Display order")

	userAddCmd.Flags().StringVar(&userAddFlagLogin, "login", "", "Login")
	userAddCmd.Flags().StringVar(&userAddFlagEmail, "email", "", "Email")

	notificationCmd.Flags().BoolVar(&notificationFlagUnread, "unread", false, "Only unread notifications")

	stageCmd.AddCommand(stageListCmd)
	stageCmd.AddCommand(stageAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userAddCmd)
	notificationCmd.AddCommand(notificationCheckCmd)
	notificationCmd.AddCommand(notificationReadCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(notificationCmd)
}

func runStageList(cmd *cobra.Command, args []string) error {
	stages, err := ctx.Records.Stages(cmd.Context(), model.StageKind(stageFlagKind), scope(cmd))
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), stages)
	}
	ctx.CLIFormatter().PrintStages(stages)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	users, err := ctx.Records.Users(cmd.Context(), scope(cmd))
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), users)
	}
	ctx.CLIFormatter().PrintUsers(users)
	return nil
}

func runNotificationList(cmd *cobra.Command, args []string) error {
	list, err := ctx.Records.Notifications(cmd.Context(), scope(cmd), notificationFlagUnread)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), list)
	}
	ctx.CLIFormatter().PrintNotifications(list)
	return nil
}
