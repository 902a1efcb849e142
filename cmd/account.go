package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/parser"
)

// accountCmd represents the account command.
var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"accounts", "acc"},
	Short:   "Manage backend accounts",
	Long: `List, add and remove backend accounts. Account 0 is the local offline
account and always exists.

Examples:
  timesheets account list
  timesheets account add --name Work --server https://erp.example.com --database prod --username me
  timesheets account default 2`,
	RunE: runAccountList,
}

// Account subcommand flags.
var (
	accountAddFlagName     string
	accountAddFlagServer   string
	accountAddFlagDatabase string
	accountAddFlagUsername string
	accountAddFlagAPIKey   string
	accountAddFlagDefault  bool
)

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an account",
	Args:  cobra.NoArgs,
	RunE:  runAccountAdd,
}

var accountDefaultCmd = &cobra.Command{
	Use:   "default ACCOUNT_ID",
	Short: "Make an account the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Accounts.SetDefault(cmd.Context(), id)
		return report(r, r)
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:     "delete ACCOUNT_ID",
	Aliases: []string{"rm"},
	Short:   "Delete an account and all of its records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Accounts.Delete(cmd.Context(), id)
		if err := report(r, r.Result); err != nil {
			return err
		}
		if ctx.IsCLI() {
			cli := ctx.CLIFormatter()
			for _, table := range slices.Sorted(maps.Keys(r.Removed)) {
				cli.Muted(fmt.Sprintf("  %s: %d", table, r.Removed[table]))
			}
		}
		return nil
	},
}

func init() {
	accountAddCmd.Flags().StringVar(&accountAddFlagName, "name", "", "Account name")
	accountAddCmd.Flags().StringVar(&accountAddFlagServer, "server", "", "Server URL")
	accountAddCmd.Flags().StringVar(&accountAddFlagDatabase, "database", "", "Database name")
	accountAddCmd.Flags().StringVar(&accountAddFlagUsername, "username", "", "Login")
	accountAddCmd.Flags().StringVar(&accountAddFlagAPIKey, "api-key", "", "API key")
	accountAddCmd.Flags().BoolVar(&accountAddFlagDefault, "default", false, "Make this the default account")
	_ = accountAddCmd.MarkFlagRequired("name")
	_ = accountAddCmd.MarkFlagRequired("server")

	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountDefaultCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountList(cmd *cobra.Command, args []string) error {
	c := cmd.Context()
	accounts, err := ctx.Accounts.List(c)
	if err != nil {
		return err
	}
	defaultID := ctx.Accounts.DefaultID(c)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAccounts(accounts, defaultID)
	}
	ctx.CLIFormatter().PrintAccounts(accounts, defaultID)
	return nil
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	a := &model.Account{
		Name:         accountAddFlagName,
		ServerLink:   accountAddFlagServer,
		DatabaseName: accountAddFlagDatabase,
		Username:     accountAddFlagUsername,
		APIKey:       accountAddFlagAPIKey,
	}
	r := ctx.Accounts.Create(cmd.Context(), a, accountAddFlagDefault)
	return report(r, r.Result)
}
