package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red
	colorSuccess   = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleProject = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleTask = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleDuration = lipgloss.NewStyle().
			Bold(true)

	styleNote = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) paint(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.paint(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.paint(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.paint(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.paint(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.paint(styleMuted, text))
}

// ProjectName formats a project name.
func (c *CLIFormatter) ProjectName(name string) string {
	return c.paint(styleProject, name)
}

// TaskName formats a task name.
func (c *CLIFormatter) TaskName(name string) string {
	return c.paint(styleTask, name)
}

// Duration formats a duration.
func (c *CLIFormatter) Duration(text string) string {
	return c.paint(styleDuration, text)
}

// Note formats a note.
func (c *CLIFormatter) Note(text string) string {
	return c.paint(styleNote, text)
}

// Swatch renders a small block in the color of a tag, or a blank when the
// tag has no color.
func (c *CLIFormatter) Swatch(tag string) string {
	hex := model.ColorHex(tag)
	if hex == "" || !c.IsColorEnabled() {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

// Hours formats decimal hours as HH:MM.
func (c *CLIFormatter) Hours(hours float64) string {
	return c.Duration(timer.HoursToHHMM(hours))
}

// PrintResult prints the outcome of a mutation.
func (c *CLIFormatter) PrintResult(r model.Result) {
	if r.Success {
		c.Success(r.Message)
		return
	}
	c.Error(r.Message)
}

// PrintAccounts prints the account list, marking the default account.
func (c *CLIFormatter) PrintAccounts(accounts []*model.Account, defaultID int64) {
	rows := make([]TableRow, 0, len(accounts))
	for _, a := range accounts {
		mark := ""
		if a.ID == defaultID {
			mark = "*"
		}
		rows = append(rows, TableRow{Columns: []string{
			mark, fmt.Sprint(a.ID), a.Name, a.ServerLink, a.DatabaseName, a.Username,
		}})
	}
	c.PrintTable([]string{"", "ID", "NAME", "SERVER", "DATABASE", "USER"}, rows)
}

// PrintProjectTree prints projects nested under their parents.
func (c *CLIFormatter) PrintProjectTree(nodes []*records.ProjectNode) {
	if len(nodes) == 0 {
		c.Muted("No projects.")
		return
	}
	width := c.Width()
	var walk func(n *records.ProjectNode, depth int)
	walk = func(n *records.ProjectNode, depth int) {
		indent := strings.Repeat("  ", depth)
		line := fmt.Sprintf("%s%s %s", indent, c.Swatch(n.InheritedColor),
			c.ProjectName(Truncate(n.Name, width/2)))
		line += c.paint(styleMuted, fmt.Sprintf("  #%d [%s]", n.ID, n.RemoteID))
		if n.StageName != "" {
			line += c.paint(styleMuted, "  "+n.StageName)
		}
		line += "  " + c.Hours(n.SpentHours)
		if n.AllocatedHours > 0 {
			line += c.paint(styleMuted, " / "+timer.HoursToHHMM(n.AllocatedHours))
		}
		c.Println(line)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
}

// PrintProject prints one project with its updates. description is already rendered.
func (c *CLIFormatter) PrintProject(v *model.ProjectView, updates []*model.ProjectUpdate, description string) {
	c.Printf("%s %s\n", c.Swatch(v.InheritedColor), c.ProjectName(v.Name))
	c.Printf("  ID: %d  Remote: %s  Account: %d\n", v.ID, v.RemoteID, v.AccountID)
	if v.IsSubProject() {
		c.Printf("  Parent: %s  Top level: %s\n", v.ParentID, v.TopLevelID)
	}
	if v.StageName != "" {
		c.Printf("  Stage: %s\n", v.StageName)
	}
	c.Printf("  Planned: %s → %s\n", FormatOptionalDate(v.PlannedStart), FormatOptionalDate(v.PlannedEnd))
	c.Printf("  Spent: %s", c.Hours(v.SpentHours))
	if v.AllocatedHours > 0 {
		pct := v.SpentHours / v.AllocatedHours * 100
		c.Printf(" of %s  %s %.0f%%", timer.HoursToHHMM(v.AllocatedHours), ProgressBar(pct, 20), pct)
	}
	c.Println()
	if v.SyncStatus != model.SyncClean {
		c.Printf("  Sync: %s\n", v.SyncStatus)
	}
	if v.HasDraft {
		c.Warning("Unsaved draft")
	}
	if strings.TrimSpace(description) != "" {
		c.Println()
		c.Println(strings.TrimRight(description, "\n"))
	}
	if len(updates) > 0 {
		c.Println()
		c.Title("Updates")
		for _, u := range updates {
			c.Printf("  %s  %-10s %3d%%  %s\n", FormatOptionalDate(u.Date), u.Status, u.Progress, u.Name)
		}
	}
}

// PrintTaskTree prints tasks nested under their parent tasks.
func (c *CLIFormatter) PrintTaskTree(nodes []*records.TaskNode) {
	if len(nodes) == 0 {
		c.Muted("No tasks match.")
		return
	}
	width := c.Width()
	var walk func(n *records.TaskNode, depth int)
	walk = func(n *records.TaskNode, depth int) {
		indent := strings.Repeat("  ", depth)
		name := Truncate(n.Name, width/2)
		line := fmt.Sprintf("%s%s %s", indent, c.Swatch(n.Color), c.TaskName(name))
		line += c.paint(styleMuted, fmt.Sprintf("  #%d", n.ID))
		if n.ProjectName != "" {
			line += "  " + c.ProjectName(n.ProjectName)
		}
		if n.StageName != "" {
			line += c.paint(styleMuted, "  "+n.StageName)
		}
		if n.EndDate != nil || n.Deadline != nil {
			due := n.Deadline
			if due == nil {
				due = n.EndDate
			}
			line += c.paint(styleMuted, "  due "+FormatDate(*due))
		}
		if n.SpentHours > 0 {
			line += "  " + c.Hours(n.SpentHours)
		}
		c.Println(line)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
}

// PrintTask prints one task. description is already rendered.
func (c *CLIFormatter) PrintTask(v *model.TaskView, description string) {
	c.Printf("%s %s\n", c.Swatch(v.Color), c.TaskName(v.Name))
	c.Printf("  ID: %d  Remote: %s  Account: %d\n", v.ID, v.RemoteID, v.AccountID)
	if v.ProjectName != "" {
		c.Printf("  Project: %s\n", c.ProjectName(v.ProjectName))
	}
	c.Printf("  Linkage: project %s, sub-project %s, task %s, subtask %s\n",
		v.Linkage.ProjectID, v.Linkage.SubProjectID, v.Linkage.TaskID, v.Linkage.SubTaskID)
	if v.StageName != "" {
		stage := v.StageName
		if v.Folded {
			stage += " (folded)"
		}
		c.Printf("  Stage: %s\n", stage)
	}
	c.Printf("  Dates: %s → %s  Deadline: %s\n",
		FormatOptionalDate(v.StartDate), FormatOptionalDate(v.EndDate), FormatOptionalDate(v.Deadline))
	if len(v.AssigneeIDs) > 0 {
		c.Printf("  Assignees: %s\n", v.AssigneeIDs)
	}
	c.Printf("  Spent: %s", c.Hours(v.SpentHours))
	if v.PlannedHours > 0 {
		c.Printf(" of %s", timer.HoursToHHMM(v.PlannedHours))
	}
	c.Println()
	if v.SyncStatus != model.SyncClean {
		c.Printf("  Sync: %s\n", v.SyncStatus)
	}
	if v.HasDraft {
		c.Warning("Unsaved draft")
	}
	if strings.TrimSpace(description) != "" {
		c.Println()
		c.Println(strings.TrimRight(description, "\n"))
	}
}

// PrintDeleteTask prints the outcome of a task delete.
func (c *CLIFormatter) PrintDeleteTask(r records.DeleteTaskResult) {
	if !r.Success {
		c.Error(r.Message)
		for _, child := range r.Children {
			c.Muted(fmt.Sprintf("  #%d %s", child.ID, child.Name))
		}
		return
	}
	c.Success(r.Message)
	if r.Orphaned > 0 {
		c.Warning(fmt.Sprintf("%d subtask(s) left without a parent", r.Orphaned))
	}
	if r.TimesheetsDeleted > 0 {
		c.Muted(fmt.Sprintf("  %d timesheet line(s) deleted", r.TimesheetsDeleted))
	}
}

// PrintBatchDelete prints the per-task outcome of a batch delete.
func (c *CLIFormatter) PrintBatchDelete(r records.BatchDeleteResult) {
	for _, item := range r.Items {
		switch item.Status {
		case records.ItemDeleted:
			c.Success(fmt.Sprintf("#%d deleted", item.ID))
		case records.ItemBlocked:
			c.Warning(fmt.Sprintf("#%d blocked by %d subtask(s)", item.ID, item.Children))
		default:
			c.Error(fmt.Sprintf("#%d %s", item.ID, item.Message))
		}
	}
	c.Println()
	c.PrintResult(r.Result)
}

// PrintActivities prints activities with what they are linked to.
func (c *CLIFormatter) PrintActivities(views []*model.ActivityView) {
	if len(views) == 0 {
		c.Muted("No activities match.")
		return
	}
	rows := make([]TableRow, 0, len(views))
	for _, v := range views {
		done := ""
		if v.Done {
			done = "✓"
		}
		rows = append(rows, TableRow{Columns: []string{
			fmt.Sprint(v.ID), done, FormatOptionalDate(v.DueDate), v.TypeName,
			Truncate(v.Summary, 40), string(v.LinkedType), Truncate(v.ResName, 30),
		}})
	}
	c.PrintTable([]string{"ID", "", "DUE", "TYPE", "SUMMARY", "LINKED", "RECORD"}, rows)
}

// PrintActivity prints one activity with its resolved linkage.
func (c *CLIFormatter) PrintActivity(v *model.ActivityView) {
	c.Title(v.Summary)
	c.Printf("  ID: %d  Remote: %s  Account: %d\n", v.ID, v.RemoteID, v.AccountID)
	if v.TypeName != "" {
		c.Printf("  Type: %s\n", v.TypeName)
	}
	c.Printf("  Due: %s  Done: %t\n", FormatOptionalDate(v.DueDate), v.Done)
	c.Printf("  Linked: %s %s (%s)\n", v.LinkedType, v.ResName, v.ResModel)
	c.Printf("  Project %s, sub-project %s, task %s, subtask %s\n",
		v.Linkage.ProjectID, v.Linkage.SubProjectID, v.Linkage.TaskID, v.Linkage.SubTaskID)
	if v.Note != "" {
		c.Printf("  Note: %s\n", c.Note(v.Note))
	}
}

// PrintTimesheets prints timesheet lines with a total.
func (c *CLIFormatter) PrintTimesheets(views []*model.TimesheetView) {
	if len(views) == 0 {
		c.Muted("No timesheet lines.")
		return
	}
	rows := make([]TableRow, 0, len(views))
	var total float64
	for _, v := range views {
		total += v.UnitAmount
		rows = append(rows, TableRow{Columns: []string{
			fmt.Sprint(v.ID), FormatDate(v.RecordDate), v.Duration, v.Quadrant.String(),
			Truncate(v.ProjectName, 25), Truncate(v.TaskName, 25), Truncate(v.Name, 30), string(v.TimerMark),
		}})
	}
	c.PrintTable([]string{"ID", "DATE", "HOURS", "QUADRANT", "PROJECT", "TASK", "DESCRIPTION", "TIMER"}, rows)
	c.Printf("\nTotal: %s\n", c.Hours(total))
}

// PrintTimesheet prints one timesheet line.
func (c *CLIFormatter) PrintTimesheet(v *model.TimesheetView) {
	c.Printf("%s %s\n", c.Swatch(v.Color), c.paint(styleBold, v.Name))
	c.Printf("  ID: %d  Remote: %s  Account: %d\n", v.ID, v.RemoteID, v.AccountID)
	c.Printf("  Date: %s  Hours: %s  Quadrant: %s\n", FormatDate(v.RecordDate), c.Duration(v.Duration), v.Quadrant)
	if v.ProjectName != "" {
		c.Printf("  Project: %s\n", c.ProjectName(v.ProjectName))
	}
	if v.TaskName != "" {
		c.Printf("  Task: %s\n", c.TaskName(v.TaskName))
	}
	if v.TimerMark != model.TimerMarkNone {
		c.Printf("  Timer: %s\n", v.TimerMark)
	}
}

// PrintTimer prints the timer state.
func (c *CLIFormatter) PrintTimer(st timer.Status) {
	if !st.Success {
		c.Error(st.Message)
		return
	}
	if st.Message != "" {
		c.Success(st.Message)
	}
	d := timer.NewDisplay()
	d.UseColor = c.IsColorEnabled()
	c.Println(d.Render(st))
}

// PrintDraftSave prints the outcome of saving a draft.
func (c *CLIFormatter) PrintDraftSave(r draft.SaveResult) {
	if !r.Success {
		c.Error(r.Message)
		return
	}
	if !r.HasChanges {
		c.Muted("No changes; nothing saved.")
		return
	}
	c.Success(fmt.Sprintf("Draft #%d saved (%s)", r.DraftID, draft.ChangesSummary(r.ChangedFields)))
	if r.PageIdentifier != draft.DefaultPage {
		c.Muted("Page: " + r.PageIdentifier)
	}
}

// PrintDraft prints one draft with its changed fields.
func (c *CLIFormatter) PrintDraft(d *model.Draft) {
	c.Title(fmt.Sprintf("%s draft #%d", draft.Label(d.FormType), d.ID))
	record := "new record"
	if !d.IsNewRecord() {
		record = fmt.Sprintf("record #%d", *d.RecordID)
	}
	c.Printf("  For: %s  Account: %d  Page: %s\n", record, d.AccountID, d.PageIdentifier)
	c.Printf("  Updated: %s\n", FormatTimeShort(d.UpdatedAt))
	for _, field := range d.ChangedFields {
		c.Printf("  %s: %v → %v\n", field, d.OriginalData[field], d.FormData[field])
	}
}

// PrintDrafts prints saved drafts.
func (c *CLIFormatter) PrintDrafts(list []*model.Draft) {
	if len(list) == 0 {
		c.Muted("No drafts.")
		return
	}
	rows := make([]TableRow, 0, len(list))
	for _, d := range list {
		record := "new"
		if !d.IsNewRecord() {
			record = fmt.Sprint(*d.RecordID)
		}
		rows = append(rows, TableRow{Columns: []string{
			fmt.Sprint(d.ID), draft.Label(d.FormType), record, fmt.Sprint(d.AccountID),
			FormatTimeShort(d.UpdatedAt), Truncate(draft.ChangesSummary(d.ChangedFields), 40),
		}})
	}
	c.PrintTable([]string{"ID", "TYPE", "RECORD", "ACCOUNT", "UPDATED", "CHANGES"}, rows)
}

// PrintDraftSummary prints draft counts by form type.
func (c *CLIFormatter) PrintDraftSummary(r draft.SummaryResult) {
	if !r.Success {
		c.Error(r.Message)
		return
	}
	if r.Total == 0 {
		c.Muted("No unsaved drafts.")
		return
	}
	c.Title("Unsaved drafts: " + r.Summary)
	for _, item := range r.Items {
		c.Printf("  #%d %-15s %s  %s\n", item.ID, item.Label, item.RecordInfo,
			c.paint(styleMuted, draft.ChangesSummary(item.ChangedFields)))
	}
}

// PrintNotifications prints local notifications, newest first.
func (c *CLIFormatter) PrintNotifications(list []*model.Notification) {
	if len(list) == 0 {
		c.Muted("No notifications.")
		return
	}
	for _, n := range list {
		mark := "•"
		if n.Read {
			mark = " "
		}
		c.Printf("%s #%d %s  %s  %s\n", mark, n.ID, c.paint(styleMuted, FormatTimeShort(n.CreatedAt)),
			c.paint(styleBold, n.Title), n.Body)
	}
}

// PrintStages prints workflow stages.
func (c *CLIFormatter) PrintStages(stages []*model.Stage) {
	rows := make([]TableRow, 0, len(stages))
	for _, s := range stages {
		fold := ""
		if s.Fold {
			fold = "folded"
		}
		rows = append(rows, TableRow{Columns: []string{
			fmt.Sprint(s.ID), s.RemoteID.String(), fmt.Sprint(s.AccountID), string(s.Kind), s.Name, fold,
		}})
	}
	c.PrintTable([]string{"ID", "REMOTE", "ACCOUNT", "KIND", "NAME", ""}, rows)
}

// PrintUsers prints backend users.
func (c *CLIFormatter) PrintUsers(users []*model.User) {
	rows := make([]TableRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, TableRow{Columns: []string{
			fmt.Sprint(u.ID), u.RemoteID.String(), fmt.Sprint(u.AccountID), u.Name, u.Login,
		}})
	}
	c.PrintTable([]string{"ID", "REMOTE", "ACCOUNT", "NAME", "LOGIN"}, rows)
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return bar
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]) + "  ")
	}
	c.Println(c.paint(styleBold, strings.TrimRight(headerLine.String(), " ")))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]) + "  ")
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// pad right-pads s to width display cells.
func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
