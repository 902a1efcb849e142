package runtime

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	apperrors "github.com/timesheets-app/timesheets/internal/errors"
)

// ErrDiskFull is reported when a store cannot be written for lack of space.
var ErrDiskFull = errors.New("disk full: unable to write to database")

const diskFullSuggestion = "Free up disk space and try again. The running timer is kept in the state store."

// FormatError formats an error with its suggestion, if any.
func FormatError(err error) string {
	if IsDiskFullError(err) {
		return err.Error() + "\n" + diskFullSuggestion
	}
	return apperrors.FormatError(err)
}

// kindCarrier is implemented by errors that only keep the name of their kind.
type kindCarrier interface {
	ErrorKind() string
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	kind := apperrors.KindOf(err).String()
	var kc kindCarrier
	if errors.As(err, &kc) && kc.ErrorKind() != "" {
		kind = kc.ErrorKind()
	}
	switch kind {
	case apperrors.KindValidation.String():
		return 2
	case apperrors.KindNotFound.String():
		return 3
	case apperrors.KindConstraint.String(), apperrors.KindReferential.String():
		return 4
	default:
		return 1
	}
}

// DiskFullError represents a disk full condition with additional context.
type DiskFullError struct {
	Op      string // The operation that failed (e.g., "open", "write")
	Path    string // The path involved, if known
	wrapped error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.wrapped)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// NewDiskFullError creates a new DiskFullError.
func NewDiskFullError(op, path string, err error) *DiskFullError {
	return &DiskFullError{
		Op:      op,
		Path:    path,
		wrapped: err,
	}
}

var diskFullPatterns = []string{
	"no space left on device",
	"disk full",
	"database or disk is full",
	"enospc",
	"not enough space",
	"insufficient disk space",
}

// IsDiskFullError checks if an error indicates a disk full condition.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	var diskFullErr *DiskFullError
	if errors.As(err, &diskFullErr) || errors.Is(err, ErrDiskFull) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range diskFullPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// WrapDiskFullError wraps an error as a DiskFullError if it indicates disk full.
// Any other error is returned unchanged.
func WrapDiskFullError(err error, op, path string) error {
	if err == nil {
		return nil
	}
	if IsDiskFullError(err) {
		return NewDiskFullError(op, path, err)
	}
	return err
}
