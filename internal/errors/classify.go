package errors

import (
	"errors"
	"strings"
)

var notFoundSentinels = []error{
	ErrNotFound,
	ErrAccountNotFound,
	ErrProjectNotFound,
	ErrTaskNotFound,
	ErrTimesheetNotFound,
	ErrActivityNotFound,
	ErrDraftNotFound,
	ErrNoActiveTimer,
}

var validationSentinels = []error{
	ErrInvalidFormType,
	ErrInvalidQuadrant,
	ErrInvalidDuration,
	ErrInvalidDate,
	ErrInvalidFilter,
	ErrNoProject,
	ErrLocalAccount,
}

// KindOf classifies an error chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for _, s := range notFoundSentinels {
		if errors.Is(err, s) {
			return KindNotFound
		}
	}
	if errors.Is(err, ErrDuplicateAccount) || isConstraintMessage(err) {
		return KindConstraint
	}
	if errors.Is(err, ErrHasChildren) {
		return KindReferential
	}
	for _, s := range validationSentinels {
		if errors.Is(err, s) {
			return KindValidation
		}
	}
	if IsUserError(err) {
		return KindValidation
	}
	if IsSystemError(err) {
		return KindStorage
	}
	return KindUnknown
}

// isConstraintMessage recognises SQLite constraint failures that slipped past a pre-check.
func isConstraintMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

// IsNotFound reports whether err means a lookup matched nothing.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
