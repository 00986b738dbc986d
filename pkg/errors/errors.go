package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category classifies matcher errors for reporting and exit-code mapping.
type Category string

const (
	// CategoryConfiguration covers bad flags and unresolvable account paths.
	// These are detected before any matching begins.
	CategoryConfiguration Category = "configuration"
	// CategorySession covers book open/save failures from the storage layer.
	CategorySession Category = "session"
	// CategoryData covers malformed ledger records surfaced by the store.
	// Data anomalies inside the matching pass are filtered, never raised.
	CategoryData Category = "data"
	// CategoryInternal covers everything else.
	CategoryInternal Category = "internal"
)

// MatcherError is the tagged error type used at the CLI boundary.
type MatcherError struct {
	Category Category
	Message  string
	Context  map[string]interface{}
	Cause    error
	stack    errors.StackTrace
}

// Error implements the error interface.
func (e *MatcherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *MatcherError) Unwrap() error {
	return e.Cause
}

// StackTrace returns the stack captured when the error was created.
func (e *MatcherError) StackTrace() errors.StackTrace {
	return e.stack
}

// ExitCode maps the error category to a process exit code.
func (e *MatcherError) ExitCode() int {
	switch e.Category {
	case CategoryConfiguration:
		return 2
	case CategorySession:
		return 3
	case CategoryData:
		return 4
	default:
		return 1
	}
}

// WithContext attaches a key/value pair for diagnostic output.
func (e *MatcherError) WithContext(key string, value interface{}) *MatcherError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a MatcherError with a captured stack.
func New(category Category, message string) *MatcherError {
	return &MatcherError{
		Category: category,
		Message:  message,
		stack:    errors.New("").(stackTracer).StackTrace(),
	}
}

// Newf creates a MatcherError with a formatted message.
func Newf(category Category, format string, args ...interface{}) *MatcherError {
	return New(category, fmt.Sprintf(format, args...))
}

// Wrap annotates an existing error. Returns nil for a nil cause.
func Wrap(err error, category Category, message string) *MatcherError {
	if err == nil {
		return nil
	}
	return &MatcherError{
		Category: category,
		Message:  message,
		Cause:    err,
		stack:    errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// AccountNotFound reports an account path that did not resolve.
func AccountNotFound(role, path string) *MatcherError {
	return Newf(CategoryConfiguration, "could not find %s account '%s'", role, path).
		WithContext("role", role).
		WithContext("path", path)
}

// SessionError reports a book open, save, or close failure.
func SessionError(operation, file string, err error) *MatcherError {
	return Wrap(err, CategorySession, fmt.Sprintf("session %s failed for %s", operation, file)).
		WithContext("operation", operation).
		WithContext("file", file)
}

// As extracts a MatcherError from an error chain.
func As(err error) (*MatcherError, bool) {
	var merr *MatcherError
	if errors.As(err, &merr) {
		return merr, true
	}
	return nil, false
}

// ExitCode returns the exit code for any error: MatcherErrors map by
// category, nil is success, everything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if merr, ok := As(err); ok {
		return merr.ExitCode()
	}
	return 1
}
