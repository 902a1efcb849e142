package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/timesheets-app/timesheets/internal/config"
	"github.com/timesheets-app/timesheets/internal/draft"
	apperrors "github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/storage"
)

// draftCmd represents the draft command.
var draftCmd = &cobra.Command{
	Use:     "draft",
	Aliases: []string{"drafts"},
	Short:   "Inspect and maintain unsaved form drafts",
	Long: `Drafts keep in-progress edits of tasks, projects, timesheet lines, project
updates and activities so they survive a crash. A draft is only written when
the form differs from the record it was opened from.

Examples:
  timesheets draft summary
  timesheets draft save --type task --record 4 --data '{"name": "New name"}' --original '{"name": "Old"}'
  timesheets draft load --type task --record 4
  timesheets draft save --type project --new-page --data '{"name": "Intranet"}'
  timesheets draft cleanup --max-age 3d`,
	RunE: runDraftList,
}

// Draft subcommand flags.
var (
	draftFlagType     string
	draftFlagRecord   int64
	draftFlagPage     string
	draftFlagData     string
	draftFlagOriginal string
	draftFlagMaxAge   string
	draftFlagAll      bool
	draftFlagNewPage  bool
)

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts",
	Args:  cobra.NoArgs,
	RunE:  runDraftList,
}

var draftSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count unsaved drafts by form type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := ctx.Drafts.Summary(cmd.Context(), scope(cmd))
		if err := render(r, func(c *output.CLIFormatter) { c.PrintDraftSummary(r) }); err != nil {
			return err
		}
		if !r.Success {
			return silentError{resultError{r.Result}}
		}
		return nil
	},
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a form snapshot as a draft when it has changes",
	Args:  cobra.NoArgs,
	RunE:  runDraftSave,
}

var draftLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the draft of a form",
	Args:  cobra.NoArgs,
	RunE:  runDraftLoad,
}

var draftDeleteCmd = &cobra.Command{
	Use:     "delete [DRAFT_ID]",
	Aliases: []string{"rm", "discard"},
	Short:   "Delete a draft by id, or every draft matching --type/--record/--page",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runDraftDelete,
}

var draftCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove drafts older than --max-age",
	Args:  cobra.NoArgs,
	RunE:  runDraftCleanup,
}

var draftPurgeCmd = &cobra.Command{
	Use:   "purge TYPE [RECORD_ID...]",
	Short: "Remove drafts of deleted records",
	Long: `Remove the drafts of the given records. Without ids, the drafts of every
deleted record of TYPE are removed.`,
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: formTypeNames(),
	RunE:      runDraftPurge,
}

var draftSyncCmd = &cobra.Command{
	Use:   "sync-flags",
	Short: "Recompute the unsaved-draft flag of every record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := ctx.Drafts.SyncHasDraftFlags(cmd.Context())
		return report(r, r.Result)
	},
}

func init() {
	for _, c := range []*cobra.Command{draftSaveCmd, draftLoadCmd, draftDeleteCmd} {
		c.Flags().StringVarP(&draftFlagType, "type", "t", "", "Form type: task, project, timesheet, project_update, activity")
		c.Flags().Int64Var(&draftFlagRecord, "record", 0, "Record id; 0 for a new record")
		c.Flags().StringVar(&draftFlagPage, "page", "", "Page identifier of the open form")
	}
	draftSaveCmd.Flags().StringVar(&draftFlagData, "data", "{}", "Current form values (JSON or YAML)")
	draftSaveCmd.Flags().StringVar(&draftFlagOriginal, "original", "{}", "Values the form was opened with (JSON or YAML)")
	draftSaveCmd.Flags().BoolVar(&draftFlagNewPage, "new-page", false, "Generate a fresh page identifier for this form")
	draftSaveCmd.MarkFlagsMutuallyExclusive("page", "new-page")
	_ = draftSaveCmd.MarkFlagRequired("type")
	_ = draftLoadCmd.MarkFlagRequired("type")
	draftListCmd.Flags().BoolVar(&draftFlagAll, "all", false, "List drafts of every account")
	draftCleanupCmd.Flags().StringVar(&draftFlagMaxAge, "max-age", "", "Maximum age (e.g. 7d, 12h); default from config")

	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftSummaryCmd)
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftLoadCmd)
	draftCmd.AddCommand(draftDeleteCmd)
	draftCmd.AddCommand(draftCleanupCmd)
	draftCmd.AddCommand(draftPurgeCmd)
	draftCmd.AddCommand(draftSyncCmd)
	rootCmd.AddCommand(draftCmd)
}

func formTypeNames() []string {
	names := make([]string, len(model.FormTypes))
	for i, ft := range model.FormTypes {
		names[i] = string(ft)
	}
	return names
}

// draftKey builds the form key from the shared flags.
func draftKey(cmd *cobra.Command) (draft.Key, error) {
	key := draft.Key{AccountID: writeAccount(cmd), PageIdentifier: draftFlagPage}
	if draftFlagType != "" {
		ft, err := model.ParseFormType(draftFlagType)
		if err != nil {
			return key, err
		}
		key.FormType = ft
	}
	if draftFlagRecord > 0 {
		id := draftFlagRecord
		key.RecordID = &id
	}
	return key, nil
}

// parseSnapshot decodes a form snapshot. JSON is valid YAML, so both are accepted.
func parseSnapshot(flag, s string) (map[string]any, error) {
	out := map[string]any{}
	if s == "" {
		return out, nil
	}
	if err := yaml.Unmarshal([]byte(s), &out); err != nil {
		return nil, apperrors.NewUserErrorWithField(flag, s,
			"Form data must be a JSON or YAML object", `Example: --`+flag+` '{"name": "Homepage"}'`)
	}
	return out, nil
}

func runDraftList(cmd *cobra.Command, args []string) error {
	sc := scope(cmd)
	if draftFlagAll {
		sc = model.AllAccounts
	}
	r := ctx.Drafts.All(cmd.Context(), sc)
	if !r.Success {
		return resultError{r.Result}
	}
	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), r.Drafts)
	}
	ctx.CLIFormatter().PrintDrafts(r.Drafts)
	return nil
}

func runDraftSave(cmd *cobra.Command, args []string) error {
	key, err := draftKey(cmd)
	if err != nil {
		return err
	}
	current, err := parseSnapshot("data", draftFlagData)
	if err != nil {
		return err
	}
	original, err := parseSnapshot("original", draftFlagOriginal)
	if err != nil {
		return err
	}
	if draftFlagNewPage {
		key.PageIdentifier = draft.NewPageIdentifier()
	}

	r := ctx.Drafts.Save(cmd.Context(), key, current, original)
	if err := render(r, func(c *output.CLIFormatter) { c.PrintDraftSave(r) }); err != nil {
		return err
	}
	if !r.Success {
		return silentError{resultError{r.Result}}
	}
	return nil
}

func runDraftLoad(cmd *cobra.Command, args []string) error {
	key, err := draftKey(cmd)
	if err != nil {
		return err
	}
	r := ctx.Drafts.Load(cmd.Context(), key)
	if ctx.IsJSON() {
		if err := ctx.Formatter.JSON(r); err != nil {
			return err
		}
		if !r.Success {
			return silentError{resultError{r.Result}}
		}
		return nil
	}
	if !r.Success {
		return resultError{r.Result}
	}
	ctx.CLIFormatter().PrintDraft(r.Draft)
	return nil
}

func runDraftDelete(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		id, err := parser.ParseID(args[0])
		if err != nil {
			return err
		}
		r := ctx.Drafts.Delete(cmd.Context(), id)
		return report(r, r)
	}

	key, err := draftKey(cmd)
	if err != nil {
		return err
	}
	if key.FormType == "" && key.RecordID == nil && key.PageIdentifier == "" {
		return apperrors.NewUserError("Nothing selects the drafts to delete",
			"Pass a draft id, or at least one of --type, --record and --page")
	}
	account := key.AccountID
	r := ctx.Drafts.DeleteMatching(cmd.Context(), storage.DraftFilter{
		FormType:       key.FormType,
		RecordID:       key.RecordID,
		AccountID:      &account,
		PageIdentifier: key.PageIdentifier,
	})
	return report(r, r.Result)
}

func runDraftCleanup(cmd *cobra.Command, args []string) error {
	maxAge := config.Global.Drafts.MaxAge
	if draftFlagMaxAge != "" {
		var err error
		if maxAge, err = config.ParseAge(draftFlagMaxAge); err != nil {
			return err
		}
	}
	r := ctx.Drafts.CleanupOld(cmd.Context(), maxAge)
	return report(r, r.Result)
}

func runDraftPurge(cmd *cobra.Command, args []string) error {
	ft, err := model.ParseFormType(args[0])
	if err != nil {
		return err
	}
	var ids []int64
	if len(args) > 1 {
		if ids, err = parser.ParseIDs(args[1:]); err != nil {
			return err
		}
	}
	r := ctx.Drafts.CleanupForDeletedRecords(cmd.Context(), ft, ids)
	return report(r, r.Result)
}
