// Package errors provides structured error types with codes that classify
// failures across the inventory pipeline.
//
// Callers wrap lower-level errors with a code so that the command layer can
// decide exit behavior without inspecting error strings:
//
//	if err != nil {
//	    return nil, errors.Wrap(errors.ErrCodeRetrievalFailed, "cmdb query failed", err)
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error.
type ErrorCode string

const (
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          ErrorCode = "INTERNAL"
	ErrCodeRetrievalFailed   ErrorCode = "RETRIEVAL_FAILED"
)

// StructuredError is an error carrying a code, a message, an optional cause,
// and optional key/value context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError without a cause.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Wrap creates a StructuredError around cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext creates a StructuredError around cause with additional context.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// CodeOf returns the code of the first StructuredError in err's chain,
// or ErrCodeInternal if there is none. A nil error has an empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// CodeFromHTTPStatus maps an upstream HTTP status onto an error code.
func CodeFromHTTPStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrCodeUnauthorized
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimitExceeded
	case status >= http.StatusInternalServerError:
		return ErrCodeUnavailable
	default:
		return ErrCodeRetrievalFailed
	}
}

// Retryable reports whether an operation failing with code might succeed
// if attempted again. It is informational and surfaces in HTTP error
// responses; nothing in this module retries.
func Retryable(code ErrorCode) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeUnavailable, ErrCodeRateLimitExceeded, ErrCodeInternal:
		return true
	default:
		return false
	}
}
