// Package errors provides structured error types for craftstat.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and proxy server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The library surfaces exactly three failure kinds to callers:
//   - INVALID_QUERY: the caller-supplied host or port is malformed; raised
//     synchronously before any network access and never retried
//   - UPSTREAM_UNAVAILABLE: the status API could not be reached or returned
//     a server-side failure after the retry budget was exhausted; safe for
//     the caller to retry later
//   - MALFORMED_RESPONSE: the status API answered 2xx but the body failed
//     structural validation; retrying an unchanged response is futile, so
//     the library never retries it automatically
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidQuery, "port %d out of range", port)
//	if errors.Is(err, errors.ErrCodeInvalidQuery) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpstreamUnavailable, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure kinds surfaced by the library.
const (
	// ErrCodeInvalidQuery marks caller-supplied host/port validation failures.
	ErrCodeInvalidQuery Code = "INVALID_QUERY"

	// ErrCodeUpstreamUnavailable marks network errors, timeouts and upstream
	// 5xx responses that survived the retry budget.
	ErrCodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"

	// ErrCodeMalformedResponse marks 2xx responses whose body failed
	// structural validation.
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"

	// ErrCodeInternal marks unexpected internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
