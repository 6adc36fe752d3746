package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSplitError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *SplitError
		wantStr string
	}{
		{
			name:    "basic error",
			err:     &SplitError{Code: "TEST_ERROR", Message: "test message"},
			wantStr: "[TEST_ERROR] test message",
		},
		{
			name: "error with cause",
			err: &SplitError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Cause:   errors.New("underlying error"),
			},
			wantStr: "[TEST_ERROR] test message: underlying error",
		},
		{
			name: "error with details",
			err: &SplitError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Details: map[string]interface{}{"path": "/tmp/x"},
			},
			wantStr: "details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.wantStr) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.wantStr)
			}
		})
	}
}

func TestSplitError_IsMatchesDerivedErrors(t *testing.T) {
	err := NewIOError("/data/movie.mp4", 3, errors.New("disk full"))

	if !errors.Is(err, ErrIOFailure) {
		t.Error("derived error should match ErrIOFailure")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("derived error should not match ErrNotFound")
	}

	wrapped := fmt.Errorf("split failed: %w", err)
	if !errors.Is(wrapped, ErrIOFailure) {
		t.Error("wrapped error should still match ErrIOFailure")
	}
}

func TestSplitError_WithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrNotFound.WithCause(cause)

	if err.Cause != cause {
		t.Errorf("WithCause() cause = %v, want %v", err.Cause, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("WithCause() should allow errors.Is to work")
	}
	if ErrNotFound.Cause != nil {
		t.Error("WithCause() must not mutate the sentinel")
	}
}

func TestSplitError_WithDetail(t *testing.T) {
	err := ErrIOFailure.WithDetail("path", "/a").WithDetail("fragment", 2)

	if err.Details["path"] != "/a" {
		t.Errorf("path detail = %v, want /a", err.Details["path"])
	}
	if err.Details["fragment"] != 2 {
		t.Errorf("fragment detail = %v, want 2", err.Details["fragment"])
	}
	if len(ErrIOFailure.Details) != 0 {
		t.Error("WithDetail() must not mutate the sentinel")
	}
}

func TestSplitError_WithMessage(t *testing.T) {
	err := ErrNotFound.WithMessage("not a directory")

	if err.Message != "not a directory" {
		t.Errorf("WithMessage() message = %q, want 'not a directory'", err.Message)
	}
	if err.Code != ErrNotFound.Code {
		t.Errorf("WithMessage() code = %q, want %q", err.Code, ErrNotFound.Code)
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "sentinel", err: ErrPermissionDenied, want: "PERMISSION_DENIED"},
		{name: "constructor", err: NewNotFoundError("/x", nil), want: "NOT_FOUND"},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", NewIOError("/x", 0, nil)), want: "IO_FAILURE"},
		{name: "standard error", err: errors.New("test"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSplitError(t *testing.T) {
	if !IsSplitError(ErrInvalidArgument) {
		t.Error("IsSplitError(ErrInvalidArgument) = false, want true")
	}
	if IsSplitError(errors.New("test")) {
		t.Error("IsSplitError(standard error) = true, want false")
	}
}
