// Package errors provides the error taxonomy and exit codes for dprs.
//
// Configuration errors are fatal and raised before any scoring happens.
// Output errors are reported after a report was computed. Signal errors
// describe a single probe that could not be collected; they are recorded on
// the check and never abort a run.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes for different error categories.
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitConfigError      = 2
	ExitOutputError      = 3
	ExitBelowMinimum     = 4
	ExitInsufficientData = 5
)

// ReadinessError is the base error type for all dprs-specific errors.
type ReadinessError struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message, including the cause if present.
func (e *ReadinessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *ReadinessError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(msg string) *ReadinessError {
	return &ReadinessError{
		Code:    ExitConfigError,
		Message: msg,
	}
}

// NewConfigErrorf creates a configuration error from a format string.
func NewConfigErrorf(format string, args ...any) *ReadinessError {
	return NewConfigError(fmt.Sprintf(format, args...))
}

// NewConfigErrorWithCause creates a new configuration error with an underlying cause.
func NewConfigErrorWithCause(msg string, cause error) *ReadinessError {
	return &ReadinessError{
		Code:    ExitConfigError,
		Message: msg,
		Cause:   cause,
	}
}

// NewOutputError creates a new output error.
func NewOutputError(msg string) *ReadinessError {
	return &ReadinessError{
		Code:    ExitOutputError,
		Message: msg,
	}
}

// NewOutputErrorWithCause creates a new output error with an underlying cause.
func NewOutputErrorWithCause(msg string, cause error) *ReadinessError {
	return &ReadinessError{
		Code:    ExitOutputError,
		Message: msg,
		Cause:   cause,
	}
}

// NewBelowMinimumError reports a total score under the requested gate.
func NewBelowMinimumError(total, minimum float64) *ReadinessError {
	return &ReadinessError{
		Code:    ExitBelowMinimum,
		Message: fmt.Sprintf("total score %g is below the minimum of %g", total, minimum),
	}
}

// NewInsufficientDataError reports categories flagged for missing signals.
func NewInsufficientDataError(categories []string) *ReadinessError {
	return &ReadinessError{
		Code:    ExitInsufficientData,
		Message: fmt.Sprintf("insufficient data for categories: %v", categories),
	}
}

// NewGeneralError creates a new general error.
func NewGeneralError(msg string) *ReadinessError {
	return &ReadinessError{
		Code:    ExitGeneralError,
		Message: msg,
	}
}

// NewGeneralErrorWithCause creates a new general error with an underlying cause.
func NewGeneralErrorWithCause(msg string, cause error) *ReadinessError {
	return &ReadinessError{
		Code:    ExitGeneralError,
		Message: msg,
		Cause:   cause,
	}
}

// SignalError is returned by a probe whose signal could not be collected.
// The collector turns it into an unavailable check.
type SignalError struct {
	Check string
	Cause error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal %s unavailable: %v", e.Check, e.Cause)
}

func (e *SignalError) Unwrap() error {
	return e.Cause
}

// NewSignalError wraps cause as an unavailable signal for check.
func NewSignalError(check string, cause error) *SignalError {
	return &SignalError{Check: check, Cause: cause}
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return codeOf(err) == ExitConfigError
}

// IsOutputError checks if an error is an output error.
func IsOutputError(err error) bool {
	return codeOf(err) == ExitOutputError
}

// IsSignalError checks if an error marks an unavailable signal.
func IsSignalError(err error) bool {
	var sigErr *SignalError
	return stderrors.As(err, &sigErr)
}

// GetExitCode returns the exit code for an error.
// If the error is not a ReadinessError, it returns ExitGeneralError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code := codeOf(err); code != 0 {
		return code
	}
	return ExitGeneralError
}

func codeOf(err error) int {
	var rErr *ReadinessError
	if stderrors.As(err, &rErr) {
		return rErr.Code
	}
	return 0
}
