package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheets-app/timesheets/internal/draft"
	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/timer"
)

func newTestCLI() (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, Format: FormatCLI, ColorMode: ColorNever}
	return NewCLIFormatter(f), &buf
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
	assert.False(t, f.NoNewline)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{
			Writer:    &buf,
			ColorMode: ColorAuto,
		}
		// Buffer is not a terminal
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_never_colors", func(t *testing.T) {
		f := &Formatter{Format: FormatPlain, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatPlain, ParseFormat("plain"))
	assert.Equal(t, FormatCLI, ParseFormat("cli"))
	assert.Equal(t, FormatCLI, ParseFormat("yaml"))
}

func TestParseColorMode(t *testing.T) {
	assert.Equal(t, ColorAlways, ParseColorMode("always"))
	assert.Equal(t, ColorNever, ParseColorMode("never"))
	assert.Equal(t, ColorAuto, ParseColorMode(""))
}

func TestFormatterWidthFallsBack(t *testing.T) {
	f := &Formatter{Writer: &bytes.Buffer{}}
	assert.Equal(t, DefaultWidth, f.Width())
}

func TestFormatterPrint(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Print("hello")
	f.Println(" world")
	f.Printf("%d", 3)
	assert.Equal(t, "hello world\n3", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	data := map[string]string{"key": "value"}
	err := f.JSON(data)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "anything", Truncate("anything", 0))
}

func TestFormatOptionalDate(t *testing.T) {
	assert.Equal(t, "-", FormatOptionalDate(nil))
	d := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-04", FormatOptionalDate(&d))
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func TestCLIFormatterMessages(t *testing.T) {
	c, buf := newTestCLI()

	c.Success("saved")
	c.Warning("careful")
	c.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "✓ saved")
	assert.Contains(t, out, "⚠ careful")
	assert.Contains(t, out, "✗ broken")
}

func TestCLIFormatterNoColorIsPlain(t *testing.T) {
	c, _ := newTestCLI()
	assert.Equal(t, "Website", c.ProjectName("Website"))
	assert.Equal(t, " ", c.Swatch("3"))
}

func TestPrintResult(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintResult(model.OK("Task created"))
	c.PrintResult(model.Fail(errors.ErrTaskNotFound))

	assert.Contains(t, buf.String(), "✓ Task created")
	assert.Contains(t, buf.String(), "✗ ")
}

func TestPrintTable(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTable([]string{"ID", "NAME"}, []TableRow{
		{Columns: []string{"1", "Alpha"}},
		{Columns: []string{"22", "B"}},
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME", string(lines[0]))
	assert.Equal(t, "1   Alpha", string(lines[2]))
	assert.Equal(t, "22  B", string(lines[3]))
}

func TestPrintTableEmpty(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTable([]string{"ID"}, nil)
	assert.Empty(t, buf.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "██████████", ProgressBar(150, 10))
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(-5, 10))
}

func TestPrintTaskTreeIndentsSubtasks(t *testing.T) {
	c, buf := newTestCLI()
	parent := &model.TaskView{Task: &model.Task{Syncable: model.Syncable{ID: 1, RemoteID: 10}, Name: "Parent"}}
	child := &model.TaskView{Task: &model.Task{Syncable: model.Syncable{ID: 2, RemoteID: 11}, Name: "Child", ParentID: 10}}

	c.PrintTaskTree(records.BuildTaskTree([]*model.TaskView{parent, child}))

	out := buf.String()
	assert.Contains(t, out, "Parent")
	assert.Contains(t, out, "\n    Child")
}

func TestPrintTaskTreeEmpty(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTaskTree(nil)
	assert.Contains(t, buf.String(), "No tasks match.")
}

func TestPrintDeleteTaskBlocked(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintDeleteTask(records.DeleteTaskResult{
		Result:      model.Result{Message: "Task has 1 subtask"},
		HasChildren: true,
		Children:    []*model.Task{{Syncable: model.Syncable{ID: 7}, Name: "Sub"}},
	})

	assert.Contains(t, buf.String(), "✗ Task has 1 subtask")
	assert.Contains(t, buf.String(), "#7 Sub")
}

func TestPrintBatchDelete(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintBatchDelete(records.BatchDeleteResult{
		Result: model.OK("1 deleted, 1 blocked"),
		Items: []records.BatchItem{
			{ID: 1, Status: records.ItemDeleted},
			{ID: 2, Status: records.ItemBlocked, Children: 3},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "#1 deleted")
	assert.Contains(t, out, "#2 blocked by 3 subtask(s)")
}

func TestPrintTimesheetsTotal(t *testing.T) {
	c, buf := newTestCLI()
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	views := []*model.TimesheetView{
		{TimesheetEntry: &model.TimesheetEntry{Syncable: model.Syncable{ID: 1}, Name: "a", UnitAmount: 1.5, RecordDate: day}, Duration: "01:30"},
		{TimesheetEntry: &model.TimesheetEntry{Syncable: model.Syncable{ID: 2}, Name: "b", UnitAmount: 0.75, RecordDate: day}, Duration: "00:45"},
	}
	c.PrintTimesheets(views)

	assert.Contains(t, buf.String(), "Total: 02:15")
	assert.Contains(t, buf.String(), "2026-03-04")
}

func TestPrintTimer(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTimer(timer.Status{
		Result:      model.OK("Timer started"),
		State:       model.TimerRunning,
		TimesheetID: 4,
		ElapsedText: "00:10:00",
		Hours:       0.5,
	})

	out := buf.String()
	assert.Contains(t, out, "✓ Timer started")
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "00:10:00")
}

func TestPrintDraftSaveNoChanges(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintDraftSave(draft.SaveResult{Result: model.OK("")})
	assert.Contains(t, buf.String(), "No changes")
}

func TestPrintDrafts(t *testing.T) {
	c, buf := newTestCLI()
	id := int64(12)
	c.PrintDrafts([]*model.Draft{
		{ID: 1, FormType: model.FormTask, RecordID: &id, ChangedFields: []string{"name"}},
		{ID: 2, FormType: model.FormTimesheet},
	})

	out := buf.String()
	assert.Contains(t, out, "Task")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "new")
}

func TestPrintProjectShowsUpdates(t *testing.T) {
	c, buf := newTestCLI()
	v := &model.ProjectView{
		Project:    &model.Project{Syncable: model.Syncable{ID: 3, RemoteID: 30}, Name: "Website", AllocatedHours: 10},
		SpentHours: 5,
	}
	updates := []*model.ProjectUpdate{
		{Name: "Kickoff", Status: "on_track", Progress: 20, Date: ptrTime(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))},
	}
	c.PrintProject(v, updates, "")

	out := buf.String()
	assert.Contains(t, out, "Website")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "Kickoff")
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestJSONPrintError(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	err := fmt.Errorf("lookup: %w", errors.ErrTaskNotFound)
	require.NoError(t, j.PrintError(err))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, errors.KindNotFound.String(), resp.Kind)
	assert.Contains(t, resp.Error, "lookup")
}

func TestJSONPrintErrorUserError(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintError(errors.NewUserError("Bad id", "Use a number")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "Bad id", resp.Message)
	assert.Equal(t, "Use a number", resp.Suggestion)
}

func TestJSONListNeverNull(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, PrintList[*model.Stage](j, nil))
	assert.Contains(t, buf.String(), `"items": []`)
	assert.Contains(t, buf.String(), `"count": 0`)
}

func TestJSONTimesheetsTotal(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	views := []*model.TimesheetView{
		{TimesheetEntry: &model.TimesheetEntry{UnitAmount: 1.25}},
		{TimesheetEntry: &model.TimesheetEntry{UnitAmount: 0.25}},
	}
	require.NoError(t, j.PrintTimesheets(views))

	var resp struct {
		Count      int     `json:"count"`
		TotalHours float64 `json:"total_hours"`
		Total      string  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.InDelta(t, 1.5, resp.TotalHours, 1e-9)
	assert.Equal(t, "01:30", resp.Total)
}

// =============================================================================
// Markdown Tests
// =============================================================================

func TestPlainDescription(t *testing.T) {
	assert.Equal(t, "plain text", PlainDescription("  plain text "))
	assert.Equal(t, "Hello\nworld & co", PlainDescription("<p>Hello</p><p>world &amp; co</p>"))
	assert.Equal(t, "- one\n- two", PlainDescription("<ul><li>one</li><li>two</li></ul>"))
}

func TestRenderMarkdownNoColor(t *testing.T) {
	f := &Formatter{Writer: &bytes.Buffer{}, ColorMode: ColorNever}
	out := f.RenderMarkdown("# Heading\n\nSome **bold** text")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "bold")
	assert.Empty(t, f.RenderMarkdown("   "))
}
