package draft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timesheets-app/timesheets/internal/model"
)

var typeLabels = map[model.FormType]string{
	model.FormTask:          "Task",
	model.FormProject:       "Project",
	model.FormTimesheet:     "Timesheet",
	model.FormProjectUpdate: "Project Update",
	model.FormActivity:      "Activity",
}

// Label returns the display label of a form type.
func Label(ft model.FormType) string {
	if l, ok := typeLabels[ft]; ok {
		return l
	}
	return string(ft)
}

// SummaryItem describes one draft in a summary.
type SummaryItem struct {
	ID            int64          `json:"id"`
	FormType      model.FormType `json:"type"`
	Label         string         `json:"label"`
	RecordID      *int64         `json:"record_id,omitempty"`
	IsNewRecord   bool           `json:"is_new_record"`
	RecordInfo    string         `json:"record_info"`
	ChangedFields []string       `json:"changed_fields"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SummaryResult groups the drafts of an account by form type.
type SummaryResult struct {
	model.Result
	Total   int                    `json:"total"`
	ByType  map[model.FormType]int `json:"by_type"`
	Items   []SummaryItem          `json:"items"`
	Summary string                 `json:"summary"`
}

// Summary counts the drafts of an account (or every account) by type and
// phrases the counts as a sentence such as "2 Tasks and 1 Timesheet".
func (m *Manager) Summary(ctx context.Context, scope int64) SummaryResult {
	list := m.All(ctx, scope)
	if !list.Success {
		return SummaryResult{Result: list.Result, Summary: "Error loading drafts"}
	}

	res := SummaryResult{
		Result: model.OK(""),
		Total:  len(list.Drafts),
		ByType: make(map[model.FormType]int),
		Items:  make([]SummaryItem, 0, len(list.Drafts)),
	}
	for _, d := range list.Drafts {
		res.ByType[d.FormType]++
		info := "New"
		if !d.IsNewRecord() {
			info = fmt.Sprintf("#%d", *d.RecordID)
		}
		res.Items = append(res.Items, SummaryItem{
			ID:            d.ID,
			FormType:      d.FormType,
			Label:         Label(d.FormType),
			RecordID:      d.RecordID,
			IsNewRecord:   d.IsNewRecord(),
			RecordInfo:    info,
			ChangedFields: d.ChangedFields,
			UpdatedAt:     d.UpdatedAt,
		})
	}
	res.Summary = countsSentence(res.ByType)
	res.Message = res.Summary
	return res
}

func countsSentence(byType map[model.FormType]int) string {
	var parts []string
	for _, ft := range model.FormTypes {
		n := byType[ft]
		if n == 0 {
			continue
		}
		label := Label(ft)
		if n > 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}

	switch len(parts) {
	case 0:
		return "No unsaved drafts"
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}
