// Package errors provides the typed errors raised by a discount calculation run.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeConfigurationMissing marks a program record or setting lacking a required field
	TypeConfigurationMissing Type = "CONFIGURATION_MISSING"

	// TypeLookupFailure marks a failed fetch from an external collaborator
	TypeLookupFailure Type = "LOOKUP_FAILURE"

	// TypeNotFound marks an entity that does not exist
	TypeNotFound Type = "NOT_FOUND"

	// TypeDataInconsistency marks malformed external data
	TypeDataInconsistency Type = "DATA_INCONSISTENCY"

	// TypeRemote marks a failure writing results back
	TypeRemote Type = "REMOTE_ERROR"

	// TypeGuardViolation marks a result blocked by a configured guard
	TypeGuardViolation Type = "GUARD_VIOLATION"

	// TypeInput marks invalid request parameters
	TypeInput Type = "INPUT_ERROR"

	// TypeInternal marks an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		if e.Type == t {
			return true
		}
		return e.Cause != nil && IsType(e.Cause, t)
	}
	return false
}

// TypeOf returns the type of the outermost *Error in err's chain.
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// ContextValue returns the context value stored under key by the outermost *Error in err's chain.
func ContextValue(err error, key string) (any, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	v, ok := e.Context[key]
	return v, ok
}

// ConfigurationMissing creates a configuration error
func ConfigurationMissing(field string) *Error {
	return Newf(TypeConfigurationMissing, "required field missing: %s", field)
}

// Lookup wraps a failed external fetch
func Lookup(entity string, cause error) *Error {
	return Wrapf(TypeLookupFailure, cause, "cannot fetch %s", entity)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Inconsistent creates a data inconsistency error
func Inconsistent(format string, args ...any) *Error {
	return Newf(TypeDataInconsistency, format, args...)
}

// Remote wraps a failure of the result sink
func Remote(message string, cause error) *Error {
	return Wrap(TypeRemote, message, cause)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
