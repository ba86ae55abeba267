// Package errors provides standardized domain errors with codes for the Margin engine.
//
// Usage:
//
//	// In services - return typed errors
//	if nameTaken {
//	    return errors.DuplicateName("a tag with this name already exists")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicateName:
//	        response.Conflict(w, domainErr.Message, logger)
//	    case errors.CodeInvalidTokens:
//	        response.BadRequest(w, domainErr.Message, logger)
//	    }
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

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeTagNotFound   Code = "TAG_NOT_FOUND"
	CodeEmptyName     Code = "EMPTY_NAME"
	CodeDuplicateName Code = "DUPLICATE_NAME"
	CodeNoTokens      Code = "NO_TOKENS"
	CodeInvalidTokens Code = "INVALID_TOKENS"
	CodeInvalidData   Code = "INVALID_DATA"
	CodeValidation    Code = "VALIDATION"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeTagNotFound:
		return http.StatusNotFound
	case CodeDuplicateName:
		return http.StatusConflict
	case CodeEmptyName, CodeNoTokens, CodeInvalidTokens, CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidData:
		return http.StatusUnprocessableEntity
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
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrTagNotFound   = &Error{Code: CodeTagNotFound, Message: "tag not found"}
	ErrEmptyName     = &Error{Code: CodeEmptyName, Message: "name is empty"}
	ErrDuplicateName = &Error{Code: CodeDuplicateName, Message: "name already exists"}
	ErrNoTokens      = &Error{Code: CodeNoTokens, Message: "token list is empty"}
	ErrInvalidTokens = &Error{Code: CodeInvalidTokens, Message: "invalid token ids"}
	ErrInvalidData   = &Error{Code: CodeInvalidData, Message: "invalid data"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
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

// TagNotFound creates a tag not found error.
func TagNotFound(msg string) *Error {
	return &Error{Code: CodeTagNotFound, Message: msg}
}

// TagNotFoundf creates a tag not found error with formatted message.
func TagNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeTagNotFound, Message: fmt.Sprintf(format, args...)}
}

// EmptyName creates an empty name error.
func EmptyName(msg string) *Error {
	return &Error{Code: CodeEmptyName, Message: msg}
}

// DuplicateName creates a duplicate name error.
func DuplicateName(msg string) *Error {
	return &Error{Code: CodeDuplicateName, Message: msg}
}

// DuplicateNamef creates a duplicate name error with formatted message.
func DuplicateNamef(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateName, Message: fmt.Sprintf(format, args...)}
}

// NoTokens creates a no tokens error.
func NoTokens(msg string) *Error {
	return &Error{Code: CodeNoTokens, Message: msg}
}

// InvalidTokens creates an invalid tokens error carrying the offending ids.
func InvalidTokens(msg string, ids []string) *Error {
	return &Error{Code: CodeInvalidTokens, Message: msg, Details: ids}
}

// InvalidData creates an invalid data error.
func InvalidData(msg string) *Error {
	return &Error{Code: CodeInvalidData, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
