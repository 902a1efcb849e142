package model

import (
	"github.com/timesheets-app/timesheets/internal/errors"
)

// Result is the uniform outcome of a mutation entry point.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// OK builds a successful result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail converts an error into a failed result.
func Fail(err error) Result {
	if err == nil {
		return Result{Success: false}
	}
	return Result{
		Success: false,
		Message: err.Error(),
		Kind:    errors.KindOf(err).String(),
	}
}

// Err returns the result as an error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Message == "" {
		return errors.New("operation failed")
	}
	return errors.New(r.Message)
}
