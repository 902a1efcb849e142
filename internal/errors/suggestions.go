package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrAccountNotFound:   "Use 'timesheets account list' to see connected accounts.",
	ErrProjectNotFound:   "Use 'timesheets project list' to see available projects.",
	ErrTaskNotFound:      "Use 'timesheets task list' to see tasks for the current account.",
	ErrTimesheetNotFound: "Use 'timesheets timesheet list' to see timesheet entries.",
	ErrActivityNotFound:  "Use 'timesheets activity list' to see activities.",
	ErrDraftNotFound:     "Use 'timesheets draft list' to see saved drafts.",
	ErrDuplicateAccount:  "Pick a different name, or reuse the existing connection.",
	ErrHasChildren:       "Delete the subtasks first, or pass --force to orphan them.",
	ErrLocalAccount:      "The local account holds offline data and is always present.",
	ErrNoProject:         "Assign a project to the timesheet before starting its timer.",
	ErrNoActiveTimer:     "Use 'timesheets timer start <timesheet-id>' to begin tracking.",
	ErrInvalidFormType:   "Form types are: task, project, timesheet, project_update, activity.",
	ErrInvalidQuadrant:   "Quadrants are 0 (do), 1 (plan), 2 (delegate) and 3 (delete).",
	ErrInvalidDuration:   "Use HH:MM, like 01:30, or decimal hours, like 1.5.",
	ErrInvalidDate:       "Try formats like '2025-03-14', 'tomorrow' or 'next friday'.",
	ErrInvalidFilter:     "Filters are: all, today, this_week, next_week, this_month, overdue, later, done.",
}

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	return ""
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}
