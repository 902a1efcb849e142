package parser

import (
	"fmt"
	"strings"

	"github.com/timesheets-app/timesheets/internal/errors"
)

// TimeParseError represents a time parsing error with helpful suggestions.
type TimeParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// Unwrap lets errors.KindOf classify parse errors as validation failures.
func (e *TimeParseError) Unwrap() error {
	switch e.Field {
	case "date":
		return errors.ErrInvalidDate
	case "duration":
		return errors.ErrInvalidDuration
	}
	return nil
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// DurationExamples provides example duration formats.
var DurationExamples = []string{
	"1:30",
	"1h30m",
	"90m",
	"2 hours",
	"2.5h",
}

// DateExamples provides example date formats.
var DateExamples = []string{
	"2026-03-14",
	"today",
	"tomorrow",
	"next friday",
	"+3d",
	"in 2 weeks",
}

// NewDurationError creates a duration parse error with standard examples.
func NewDurationError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   DurationExamples,
		Suggestion: "Durations can be HH:MM or hours (h), minutes (m) and seconds (s).",
	}
}

// NewDateError creates a date parse error with standard examples.
func NewDateError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "date",
		Message:    "could not parse date",
		Examples:   DateExamples,
		Suggestion: "Use an ISO date like '2026-03-14' or natural language like 'next friday'.",
	}
}

// ToUserError converts a TimeParseError to a UserError for consistent handling.
func (e *TimeParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}

	return errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
}
