// Package apperr defines the error taxonomy shared across the build pipeline,
// the catalog, and the query service.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeMalformedInput     = "MALFORMED_INPUT"    // ingester rejected the edge list
	CodeUnreadableArtifact = "UNREADABLE_ARTIFACT" // a binary label file cannot be opened or is truncated
	CodeOutOfRangeVertex   = "OUT_OF_RANGE_VERTEX" // query referenced a vertex id outside [0, n)
	CodeBudgetExceeded     = "BUDGET_EXCEEDED"     // a build stage exceeded its configured worker/memory budget
	CodeFatal              = "FATAL"               // unrecoverable invariant violation, build must abort
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeStorageError       = "STORAGE_ERROR"
	CodeTimeout            = "TIMEOUT_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConfigError        = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(code string, err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Sentinel error instances, matched by code via errors.Is.
var (
	ErrMalformedInput     = New(CodeMalformedInput, "malformed input")
	ErrUnreadableArtifact = New(CodeUnreadableArtifact, "unreadable artifact")
	ErrOutOfRangeVertex   = New(CodeOutOfRangeVertex, "vertex id out of range")
	ErrBudgetExceeded     = New(CodeBudgetExceeded, "budget exceeded")
	ErrFatal              = New(CodeFatal, "fatal invariant violation")
	ErrDatabaseError      = New(CodeDatabaseError, "database error")
	ErrStorageError       = New(CodeStorageError, "storage error")
	ErrTimeout            = New(CodeTimeout, "operation timeout")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConfigError        = New(CodeConfigError, "configuration error")
)

// IsMalformedInput reports whether err is (or wraps) a malformed-input error.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsUnreadableArtifact reports whether err is (or wraps) an unreadable-artifact error.
func IsUnreadableArtifact(err error) bool {
	return errors.Is(err, ErrUnreadableArtifact)
}

// IsOutOfRangeVertex reports whether err is (or wraps) an out-of-range-vertex error.
func IsOutOfRangeVertex(err error) bool {
	return errors.Is(err, ErrOutOfRangeVertex)
}

// IsBudgetExceeded reports whether err is (or wraps) a budget-exceeded error.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}

// IsFatal reports whether err is (or wraps) a fatal invariant violation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// IsDatabaseError reports whether err is (or wraps) a database error.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
