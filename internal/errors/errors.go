// Package errors provides the error taxonomy shared by the timesheets packages.
//
// Storage and domain code return ordinary Go errors. Public entry points
// classify them with KindOf and convert them into result values, so a failed
// lookup or a broken hierarchy never aborts a whole listing.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrDraftNotFound     = errors.New("draft not found")
	ErrDuplicateAccount  = errors.New("account already exists")
	ErrHasChildren       = errors.New("record has active children")
	ErrLocalAccount      = errors.New("the local account cannot be removed")
	ErrNoProject         = errors.New("timesheet has no project assigned")
	ErrNoActiveTimer     = errors.New("no active timer")
	ErrInvalidFormType   = errors.New("invalid form type")
	ErrInvalidQuadrant   = errors.New("quadrant must be between 0 and 3")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidFilter     = errors.New("invalid filter")
)

// Kind is the canonical error classification.
type Kind int

const (
	// KindUnknown is the default for unclassified errors.
	KindUnknown Kind = iota
	// KindNotFound means a lookup matched zero rows.
	KindNotFound
	// KindConstraint means a pre-checked uniqueness rule would be violated.
	KindConstraint
	// KindReferential means a mutation was blocked by dependent records.
	KindReferential
	// KindValidation means the caller supplied bad input.
	KindValidation
	// KindStorage means the embedded database failed.
	KindStorage
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConstraint:
		return "constraint"
	case KindReferential:
		return "referential"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// UserError represents an error that the user can fix.
// Examples: invalid input, missing required arguments, incorrect format.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
	cause      error
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// Invalid wraps a sentinel as a validation error on a field.
func Invalid(sentinel error, field, value string) *UserError {
	return &UserError{
		Message: sentinel.Error(),
		Field:   field,
		Value:   value,
		cause:   sentinel,
	}
}

// SystemError represents a storage or IO failure the user cannot fix directly.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s: %v", e.Message, e.Op, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// Storage wraps a database failure for an operation.
func Storage(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &SystemError{
		Message: "storage failure",
		Cause:   cause,
		Op:      op,
	}
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// Is is re-exported from the standard errors package for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is re-exported from the standard errors package for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is re-exported from the standard errors package for convenience.
func New(text string) error {
	return errors.New(text)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
