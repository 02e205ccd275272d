package errors

import (
	stderrors "errors"
	"fmt"
)

// BootError is the structured error type used by the bootstrap core.
type BootError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *BootError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *BootError) Unwrap() error { return e.Cause }

// Fatal reports whether this error aborts the startup sequence.
func (e *BootError) Fatal() bool { return IsFatalCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *BootError) WithCause(cause error) *BootError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *BootError) WithDetail(key string, value any) *BootError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new BootError.
func New(code ErrorCode, message string) *BootError {
	return &BootError{Code: code, Message: message}
}

// Newf creates a new BootError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *BootError {
	return &BootError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsBootError extracts a *BootError from err's chain, or nil.
func AsBootError(err error) *BootError {
	var be *BootError
	if stderrors.As(err, &be) {
		return be
	}
	return nil
}

// IsStartupFailure reports whether err carries the startup-failure code.
func IsStartupFailure(err error) bool {
	be := AsBootError(err)
	return be != nil && be.Code == ErrCodeStartupFailure
}
