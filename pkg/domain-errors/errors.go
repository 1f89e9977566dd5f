// Package domainerrors defines the coded errors the gateway pipeline produces.
// Every stage fails with one of these codes; the HTTP layer translates them to
// status codes without leaking internal detail.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a pipeline failure.
type Code string

const (
	// CodeUnauthenticated: missing or invalid proxy signature.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeForbidden: origin or tenant not permitted.
	CodeForbidden Code = "forbidden"
	// CodeBadRequest: missing fields or a rejected CAPTCHA.
	CodeBadRequest Code = "bad_request"
	// CodeRateLimited: client exceeded its request quota.
	CodeRateLimited Code = "rate_limited"
	// CodeUpstream: backend or CAPTCHA provider failed.
	CodeUpstream Code = "upstream_error"
	// CodeInternal: misconfiguration or an unexpected failure.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is safe to return to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the pipeline.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstream, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
