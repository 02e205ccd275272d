package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Diagnostics — logged, execution continues with best-effort defaults.
const (
	// ErrCodeConfigWarning indicates an unresolved placeholder, a failed
	// directory-service lookup, or a missing optional configuration source.
	ErrCodeConfigWarning ErrorCode = "CONFIG_WARNING"
	// ErrCodeResourceError indicates an unreadable or unwritable resource
	// entry during extraction.
	ErrCodeResourceError ErrorCode = "RESOURCE_ERROR"
)

// Lifecycle failures.
const (
	// ErrCodeStartupFailure indicates a manager failed to start; the
	// remaining startup sequence is aborted.
	ErrCodeStartupFailure ErrorCode = "STARTUP_FAILURE"
	// ErrCodeShutdownFailure indicates one or more managers failed to stop;
	// every stop was still attempted.
	ErrCodeShutdownFailure ErrorCode = "SHUTDOWN_FAILURE"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeConfigWarning:   false,
	ErrCodeResourceError:   false,
	ErrCodeStartupFailure:  true,
	ErrCodeShutdownFailure: false,
}

// IsFatalCode returns true if the error code aborts the startup sequence.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
