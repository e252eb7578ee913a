package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitGeneralError", ExitGeneralError, 1},
		{"ExitConfigError", ExitConfigError, 2},
		{"ExitOutputError", ExitOutputError, 3},
		{"ExitBelowMinimum", ExitBelowMinimum, 4},
		{"ExitInsufficientData", ExitInsufficientData, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, tt.code)
			}
		})
	}
}

func TestReadinessError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ReadinessError
		expected string
	}{
		{
			name: "simple message",
			err: &ReadinessError{
				Code:    ExitConfigError,
				Message: "weights do not sum to 100",
			},
			expected: "weights do not sum to 100",
		},
		{
			name: "message with cause",
			err: &ReadinessError{
				Code:    ExitOutputError,
				Message: "write dprs.json",
				Cause:   errors.New("permission denied"),
			},
			expected: "write dprs.json: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReadinessError_ErrorsIs(t *testing.T) {
	cause := errors.New("disk full")
	err := NewOutputErrorWithCause("write report", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestNewConfigErrorf(t *testing.T) {
	err := NewConfigErrorf("category %q has no checks", "tests")

	if err.Code != ExitConfigError {
		t.Errorf("Code = %d, want %d", err.Code, ExitConfigError)
	}
	if err.Message != `category "tests" has no checks` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewConfigError("bad weights"))

	if !IsConfigError(wrapped) {
		t.Error("IsConfigError should match a wrapped config error")
	}
	if IsOutputError(wrapped) {
		t.Error("IsOutputError should not match a config error")
	}
	if got := GetExitCode(wrapped); got != ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitConfigError)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitGeneralError},
		{"config", NewConfigError("x"), ExitConfigError},
		{"output", NewOutputError("x"), ExitOutputError},
		{"below minimum", NewBelowMinimumError(55, 60), ExitBelowMinimum},
		{"insufficient", NewInsufficientDataError([]string{"security"}), ExitInsufficientData},
		{"general with cause", NewGeneralErrorWithCause("x", errors.New("y")), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSignalError(t *testing.T) {
	cause := errors.New("git not found")
	err := NewSignalError("secret_hygiene", cause)

	if !strings.Contains(err.Error(), "secret_hygiene") {
		t.Errorf("Error() = %q, want check id", err.Error())
	}
	if !IsSignalError(fmt.Errorf("probe: %w", err)) {
		t.Error("IsSignalError should match a wrapped signal error")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if GetExitCode(err) != ExitGeneralError {
		t.Error("signal errors carry no exit code of their own")
	}
}

func TestNewBelowMinimumError_Message(t *testing.T) {
	err := NewBelowMinimumError(72, 80)
	if !strings.Contains(err.Error(), "72") || !strings.Contains(err.Error(), "80") {
		t.Errorf("Error() = %q, want both scores", err.Error())
	}
}
