// Package apperrors defines the error taxonomy of the π calculator:
// configuration mistakes detected before any work starts, missing external
// resources, unsupported algorithm selections and failures during a run.
//
// Every type supports errors.As, and the wrapping ones implement Unwrap so
// that errors.Is reaches the underlying cause.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application exit codes.
const (
	ExitSuccess       = 0   // Successful execution.
	ExitErrorGeneric  = 1   // Generic or calculation failure.
	ExitErrorTimeout  = 2   // The execution limit was reached.
	ExitErrorMismatch = 3   // A result did not reach the requested precision.
	ExitErrorConfig   = 4   // Invalid configuration or selection.
	ExitErrorResource = 5   // A required resource file is missing or malformed.
	ExitErrorCanceled = 130 // Interrupted (e.g., SIGINT).
)

// ConfigError represents an invalid user request, such as a non-positive
// precision or a thread count the chosen scheme cannot use. It is raised
// before any computation starts.
type ConfigError struct {
	// Message explains what is wrong.
	Message string
	// Suggestion optionally tells the user how to fix it.
	Suggestion string
}

// Error returns the message, followed by the suggestion when there is one.
//
// Returns:
//   - string: The error message string.
func (e ConfigError) Error() string {
	if e.Suggestion == "" {
		return e.Message
	}
	return e.Message + " " + e.Suggestion
}

// NewConfigError creates a ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// NewConfigErrorWithSuggestion creates a ConfigError carrying a corrective
// hint, such as lowering the thread count.
//
// Parameters:
//   - message: What is wrong with the request.
//   - suggestion: How the user can fix it.
//
// Returns:
//   - error: A new ConfigError.
func NewConfigErrorWithSuggestion(message, suggestion string) error {
	return ConfigError{Message: message, Suggestion: suggestion}
}

// ResourceError reports a missing or unreadable external file, such as the
// reference digits or the work ratio table.
type ResourceError struct {
	// Path is the file that could not be used.
	Path string
	// Cause is the underlying I/O or parse error.
	Cause error
}

// Error names the file and the cause.
func (e ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause, allowing errors.Is to reach
// fs.ErrNotExist and friends.
//
// Returns:
//   - error: The I/O or parse error.
func (e ResourceError) Unwrap() error { return e.Cause }

// NewResourceError creates a ResourceError for path.
//
// Parameters:
//   - path: The file that could not be used.
//   - cause: The underlying I/O or parse error.
//
// Returns:
//   - error: A new ResourceError.
func NewResourceError(path string, cause error) error {
	return ResourceError{Path: path, Cause: cause}
}

// UnsupportedSelectionError reports an unknown library or algorithm id,
// together with the valid choices.
type UnsupportedSelectionError struct {
	Library   string
	Algorithm string
	Valid     []string
}

// Error lists what was requested and what would have been accepted.
func (e UnsupportedSelectionError) Error() string {
	what := fmt.Sprintf("library %q", e.Library)
	if e.Algorithm != "" {
		what = fmt.Sprintf("algorithm %s for library %q", e.Algorithm, e.Library)
	}
	if len(e.Valid) == 0 {
		return "unsupported " + what
	}
	return fmt.Sprintf("unsupported %s (valid choices: %s)", what, strings.Join(e.Valid, ", "))
}

// CalculationError wraps a failure that happened while a series was being
// summed.
type CalculationError struct {
	// Cause is the underlying error.
	Cause error
}

// Error returns the message of the cause.
func (e CalculationError) Error() string { return e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
//
// Returns:
//   - error: The underlying cause of the CalculationError.
func (e CalculationError) Unwrap() error { return e.Cause }

// ServerError represents errors raised by the HTTP server.
type ServerError struct {
	// Message describes the failing operation.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error combines the descriptive message and the cause if present.
//
// Returns:
//   - string: The complete error message.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the cause.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
//
// Parameters:
//   - message: A description of the failing operation.
//   - cause: The underlying error (can be nil).
//
// Returns:
//   - error: A new ServerError instance.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError adds context to err with %w so that errors.Is and errors.As
// still see the original.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a cancellation or a deadline.
//
// Parameters:
//   - err: The error to inspect.
//
// Returns:
//   - bool: true if err wraps context.Canceled or context.DeadlineExceeded.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError represents invalid input to the HTTP API.
type ValidationError struct {
	// Field is the offending parameter.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the rejected value (optional).
	Value any
}

// Error returns the message, prefixed by the field when known.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
//
// Parameters:
//   - field: The offending parameter.
//   - message: Why validation failed.
//   - value: The rejected value (may be nil).
//
// Returns:
//   - error: A new ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// ExitCode maps err to the process exit status: timeouts give 2,
// cancellations 130, configuration and selection errors 4, resource errors 5
// and anything else 1.
//
// Parameters:
//   - err: The error to classify (nil means success).
//
// Returns:
//   - int: The exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr ConfigError
		selErr UnsupportedSelectionError
		resErr ResourceError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &selErr):
		return ExitErrorConfig
	case errors.As(err, &resErr):
		return ExitErrorResource
	default:
		return ExitErrorGeneric
	}
}
