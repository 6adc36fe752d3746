package errs

import (
	"errors"
	"fmt"
)

// Error types for split operations
var (
	// ErrNotFound is returned when an input file or directory does not exist
	ErrNotFound = &SplitError{Code: "NOT_FOUND", Message: "path not found"}

	// ErrPermissionDenied is returned when the split directory or a file cannot be created or opened
	ErrPermissionDenied = &SplitError{Code: "PERMISSION_DENIED", Message: "permission denied"}

	// ErrIOFailure is returned when a read or write fails mid-copy
	ErrIOFailure = &SplitError{Code: "IO_FAILURE", Message: "i/o failure"}

	// ErrInvalidArgument is returned for a negative file size or a non-positive buffer
	ErrInvalidArgument = &SplitError{Code: "INVALID_ARGUMENT", Message: "invalid argument"}
)

// SplitError represents a structured error in split operations
type SplitError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *SplitError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s (details: %v)", msg, e.Details)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *SplitError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a SplitError with the same code, so derived
// errors still match the package sentinels.
func (e *SplitError) Is(target error) bool {
	t, ok := target.(*SplitError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause adds a cause to the error
func (e *SplitError) WithCause(cause error) *SplitError {
	return &SplitError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *SplitError) WithDetail(key string, value interface{}) *SplitError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &SplitError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *SplitError) WithMessage(message string) *SplitError {
	return &SplitError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// NewNotFoundError creates a not found error for path
func NewNotFoundError(path string, cause error) error {
	return ErrNotFound.
		WithDetail("path", path).
		WithCause(cause)
}

// NewPermissionError creates a permission denied error for path
func NewPermissionError(path string, cause error) error {
	return ErrPermissionDenied.
		WithDetail("path", path).
		WithCause(cause)
}

// NewIOError creates an i/o failure error while handling a fragment
func NewIOError(path string, fragment int, cause error) error {
	return ErrIOFailure.
		WithDetail("path", path).
		WithDetail("fragment", fragment).
		WithCause(cause)
}

// IsSplitError checks if an error is a SplitError
func IsSplitError(err error) bool {
	_, ok := err.(*SplitError)
	return ok
}

// GetErrorCode extracts the error code from a SplitError anywhere in the chain
func GetErrorCode(err error) string {
	var splitErr *SplitError
	if errors.As(err, &splitErr) {
		return splitErr.Code
	}
	return ""
}
