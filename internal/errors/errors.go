// Package errors defines error values that carry a process exit code, so
// commands can hand a single error back to main and have it mapped onto
// the exit status.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes reported by the fireprox-ctl process.
const (
	ExitOK                 = 0
	ExitGeneralError       = 1
	ExitInvalidInput       = 2
	ExitConfigError        = 3
	ExitRuntimeUnavailable = 4
	ExitTimeout            = 5
	ExitUnsupported        = 6
)

// Error is an error with an associated process exit code.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given exit code and message.
func New(code int, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with the given exit code wrapping an underlying cause.
func Wrap(code int, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// InvalidInput reports a missing or malformed argument on a mutating command.
func InvalidInput(message string) error {
	return &Error{Code: ExitInvalidInput, Message: message}
}

// ConfigError reports a fatal configuration or credential failure.
func ConfigError(message string, err error) error {
	return &Error{Code: ExitConfigError, Message: message, Err: err}
}

// RuntimeUnavailable reports that the container engine could not be reached.
func RuntimeUnavailable(err error) error {
	return &Error{Code: ExitRuntimeUnavailable, Message: "container engine unavailable", Err: err}
}

// Timeout reports an exhausted retry deadline.
func Timeout(message string) error {
	return &Error{Code: ExitTimeout, Message: message}
}

// Unsupported reports an operation this deployment mode does not implement.
func Unsupported(operation string) error {
	return &Error{Code: ExitUnsupported, Message: fmt.Sprintf("%s is not implemented", operation)}
}

// GetExitCode extracts the exit code from an error. A nil error is success;
// errors without an embedded code map to ExitGeneralError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ExitGeneralError
}
