package output

import (
	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/records"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewErrorResponse builds an ErrorResponse from err.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Status: "error",
		Error:  err.Error(),
		Kind:   errors.KindOf(err).String(),
	}
	var uerr *errors.UserError
	if errors.As(err, &uerr) {
		resp.Message = uerr.Message
		resp.Suggestion = uerr.Suggestion
	}
	if resp.Suggestion == "" {
		resp.Suggestion = errors.GetSuggestion(err)
	}
	return resp
}

// ListResponse wraps a list with its count.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse creates a ListResponse, never encoding a nil list.
func NewListResponse[T any](items []T) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{Items: items, Count: len(items)}
}

// TimesheetsResponse is the timesheet list with total hours.
type TimesheetsResponse struct {
	*ListResponse[*model.TimesheetView]
	TotalHours float64 `json:"total_hours"`
	Total      string  `json:"total"`
}

// NewTimesheetsResponse creates a TimesheetsResponse.
func NewTimesheetsResponse(views []*model.TimesheetView) *TimesheetsResponse {
	var total float64
	for _, v := range views {
		total += v.UnitAmount
	}
	return &TimesheetsResponse{
		ListResponse: NewListResponse(views),
		TotalHours:   total,
		Total:        timer.HoursToHHMM(total),
	}
}

// AccountsResponse is the account list with the default account id.
type AccountsResponse struct {
	*ListResponse[*model.Account]
	DefaultID int64 `json:"default_id"`
}

// ProjectResponse is one project with its updates.
type ProjectResponse struct {
	*model.ProjectView
	Updates []*model.ProjectUpdate `json:"updates"`
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(err error) error {
	return j.JSON(NewErrorResponse(err))
}

// PrintList outputs any list in JSON format.
func PrintList[T any](j *JSONFormatter, items []T) error {
	return j.JSON(NewListResponse(items))
}

// PrintAccounts outputs accounts in JSON format.
func (j *JSONFormatter) PrintAccounts(accounts []*model.Account, defaultID int64) error {
	return j.JSON(AccountsResponse{ListResponse: NewListResponse(accounts), DefaultID: defaultID})
}

// PrintProject outputs a project in JSON format.
func (j *JSONFormatter) PrintProject(v *model.ProjectView, updates []*model.ProjectUpdate) error {
	if updates == nil {
		updates = []*model.ProjectUpdate{}
	}
	return j.JSON(ProjectResponse{ProjectView: v, Updates: updates})
}

// PrintProjectTree outputs nested projects in JSON format.
func (j *JSONFormatter) PrintProjectTree(nodes []*records.ProjectNode) error {
	return PrintList(j, nodes)
}

// PrintTaskTree outputs nested tasks in JSON format.
func (j *JSONFormatter) PrintTaskTree(nodes []*records.TaskNode) error {
	return PrintList(j, nodes)
}

// PrintTimesheets outputs timesheet lines in JSON format.
func (j *JSONFormatter) PrintTimesheets(views []*model.TimesheetView) error {
	return j.JSON(NewTimesheetsResponse(views))
}

// PrintTimer outputs the timer state in JSON format.
func (j *JSONFormatter) PrintTimer(st timer.Status) error {
	return j.JSON(st)
}
