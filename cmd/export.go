package cmd

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/filter"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/parser"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// Export command flags.
var (
	exportFlagFrom   string
	exportFlagUntil  string
	exportFlagFormat string
	exportFlagBackup bool
	exportFlagOutput string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"dump"},
	Short:   "Export timesheet lines or back up every record",
	Long: `Export timesheet lines as JSON or CSV, optionally limited to a date range.
With --backup, every project, task, activity and timesheet line in scope is
written as one JSON document.

Examples:
  timesheets export
  timesheets export --from "last monday" -F csv -o week.csv
  timesheets export --backup -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFlagFrom, "from", "", "First record date to include")
	exportCmd.Flags().StringVar(&exportFlagUntil, "until", "", "Last record date to include")
	exportCmd.Flags().StringVarP(&exportFlagFormat, "export-format", "F", "json", "Export format: json, csv")
	exportCmd.Flags().BoolVarP(&exportFlagBackup, "backup", "b", false, "Full backup of every record in scope")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	exportCmd.MarkFlagsMutuallyExclusive("backup", "export-format")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlagFormat != "json" && exportFlagFormat != "csv" {
		return apperrors.NewUserErrorWithField("export-format", exportFlagFormat,
			"Unknown export format", "Use json or csv")
	}

	w, closeFn, err := exportWriter()
	if err != nil {
		return err
	}
	defer closeFn()

	if exportFlagBackup {
		return runBackup(cmd, w)
	}

	window, err := exportWindow()
	if err != nil {
		return err
	}
	all, err := ctx.Records.Timesheets(cmd.Context(), scope(cmd))
	if err != nil {
		return err
	}
	lines := make([]*model.TimesheetView, 0, len(all))
	for _, v := range all {
		if window.Contains(v.RecordDate) {
			lines = append(lines, v)
		}
	}

	if exportFlagFormat == "csv" {
		err = exportCSV(w, lines)
	} else {
		err = exportJSON(w, lines)
	}
	if err != nil {
		return err
	}
	if exportFlagOutput != "" && ctx.IsCLI() {
		ctx.CLIFormatter().Success("Exported " + strconv.Itoa(len(lines)) + " line(s) to " + exportFlagOutput)
	}
	return nil
}

// exportWriter opens --output, or stdout when it is empty.
func exportWriter() (io.Writer, func(), error) {
	if exportFlagOutput == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(exportFlagOutput)
	if err != nil {
		return nil, nil, apperrors.WithContext(err, "create export file "+exportFlagOutput)
	}
	return f, func() { _ = f.Close() }, nil
}

// exportWindow turns --from/--until into an inclusive day range. A missing
// bound is open.
func exportWindow() (filter.Window, error) {
	w := filter.Window{
		From: time.Date(1, 1, 1, 0, 0, 0, 0, time.Local),
		To:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.Local),
	}
	if exportFlagFrom != "" {
		from, err := parser.ParseDate(exportFlagFrom, now())
		if err != nil {
			return w, err
		}
		w.From = filter.Day(from)
	}
	if exportFlagUntil != "" {
		until, err := parser.ParseDate(exportFlagUntil, now())
		if err != nil {
			return w, err
		}
		w.To = filter.Day(until)
	}
	if w.To.Before(w.From) {
		return w, apperrors.NewUserError("--until is before --from", "Swap the two dates")
	}
	return w, nil
}

func exportJSON(w io.Writer, lines []*model.TimesheetView) error {
	doc := struct {
		Version    string                 `json:"version"`
		ExportedAt string                 `json:"exported_at"`
		Timesheets []*model.TimesheetView `json:"timesheets"`
		Hours      float64                `json:"hours"`
		Count      int                    `json:"count"`
	}{
		Version:    "1",
		ExportedAt: now().Format(time.RFC3339),
		Timesheets: lines,
		Count:      len(lines),
	}
	for _, l := range lines {
		doc.Hours += l.UnitAmount
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func exportCSV(w io.Writer, lines []*model.TimesheetView) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"id", "remote_id", "account_id", "date", "project", "task", "description",
		"quadrant", "hours", "duration",
	}); err != nil {
		return err
	}
	for _, l := range lines {
		if err := writer.Write([]string{
			strconv.FormatInt(l.ID, 10),
			l.RemoteID.String(),
			strconv.FormatInt(l.AccountID, 10),
			l.RecordDate.Format(model.DateLayout),
			l.ProjectName,
			l.TaskName,
			l.Name,
			l.Quadrant.String(),
			strconv.FormatFloat(l.UnitAmount, 'f', 2, 64),
			timer.HoursToHHMM(l.UnitAmount),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func runBackup(cmd *cobra.Command, w io.Writer) error {
	c := cmd.Context()
	sc := scope(cmd)

	projects, err := ctx.Records.Projects(c, sc)
	if err != nil {
		return err
	}
	tasks, err := ctx.Records.Tasks(c, sc)
	if err != nil {
		return err
	}
	activities, err := ctx.Records.Activities(c, sc, true)
	if err != nil {
		return err
	}
	lines, err := ctx.Records.Timesheets(c, sc)
	if err != nil {
		return err
	}
	accounts, err := ctx.Accounts.List(c)
	if err != nil {
		return err
	}

	backup := struct {
		Version    string                 `json:"version"`
		ExportedAt string                 `json:"exported_at"`
		Scope      int64                  `json:"scope"`
		Accounts   []*model.Account       `json:"accounts"`
		Projects   []*model.ProjectView   `json:"projects"`
		Tasks      []*model.TaskView      `json:"tasks"`
		Activities []*model.ActivityView  `json:"activities"`
		Timesheets []*model.TimesheetView `json:"timesheets"`
	}{
		Version:    "1",
		ExportedAt: now().Format(time.RFC3339),
		Scope:      sc,
		Accounts:   accounts,
		Projects:   projects,
		Tasks:      tasks,
		Activities: activities,
		Timesheets: lines,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return err
	}

	if exportFlagOutput != "" && ctx.IsCLI() {
		cli := ctx.CLIFormatter()
		cli.Success("Backup created: " + exportFlagOutput)
		cli.Printf("  Projects:   %d\n", len(projects))
		cli.Printf("  Tasks:      %d\n", len(tasks))
		cli.Printf("  Activities: %d\n", len(activities))
		cli.Printf("  Timesheets: %d\n", len(lines))
	}
	return nil
}
