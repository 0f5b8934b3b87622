// Package errors provides standardized domain errors with codes for the RankDeck API.
//
// Usage:
//
//	// In services - return typed errors
//	if !session.CanEdit(token) {
//	    return errors.Unauthorized("unauthorized")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.HandleError(w, err, errors.CodeFetch, logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code. Codes are wire-visible:
// they appear verbatim in the error envelope sent to clients.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeInvalidID      Code = "INVALID_ID"
	CodeInvalidOrder   Code = "INVALID_ORDER"
	CodeInvalidCardID  Code = "INVALID_CARD_ID"
	CodeSlugGeneration Code = "SLUG_GENERATION_ERROR"
	CodeFetch          Code = "FETCH_ERROR"
	CodeCreate         Code = "CREATE_ERROR"
	CodeUpdate         Code = "UPDATE_ERROR"
	CodeDelete         Code = "DELETE_ERROR"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
// UNAUTHORIZED maps to 403: the owner token is a capability, not an
// identity, so a mismatch is a refusal rather than a challenge.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeValidation, CodeInvalidID, CodeInvalidOrder, CodeInvalidCardID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized   = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInvalidID      = &Error{Code: CodeInvalidID, Message: "invalid id"}
	ErrInvalidOrder   = &Error{Code: CodeInvalidOrder, Message: "card order mismatch"}
	ErrInvalidCardID  = &Error{Code: CodeInvalidCardID, Message: "invalid card id in order"}
	ErrSlugGeneration = &Error{Code: CodeSlugGeneration, Message: "failed to generate unique slug"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// InvalidID creates an invalid id error.
func InvalidID(msg string) *Error {
	return &Error{Code: CodeInvalidID, Message: msg}
}

// InvalidOrder creates an invalid order error.
func InvalidOrder(msg string) *Error {
	return &Error{Code: CodeInvalidOrder, Message: msg}
}

// InvalidCardID creates an invalid card id error.
func InvalidCardID(msg string) *Error {
	return &Error{Code: CodeInvalidCardID, Message: msg}
}

// SlugGeneration creates a slug generation error.
func SlugGeneration(msg string) *Error {
	return &Error{Code: CodeSlugGeneration, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
