// Package errors is the typed error vocabulary shared by services and the HTTP layer.
// Services return *Error values; api/responses turns them into the error envelope.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMITED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata controls how a code is rendered to clients.
type Metadata struct {
	HTTPStatus int
	Retryable  bool
	// PublicMessage replaces the error message for codes that must not leak internals.
	PublicMessage  string
	DetailsAllowed bool
}

func clientFault(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details}
}

func serverFault(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details, Retryable: true}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    clientFault(http.StatusBadRequest, "Validation failed", true),
	CodeUnauthorized:  clientFault(http.StatusUnauthorized, "Authentication required", false),
	CodeForbidden:     clientFault(http.StatusForbidden, "Access denied", false),
	CodeNotFound:      clientFault(http.StatusNotFound, "Resource not found", false),
	CodeConflict:      clientFault(http.StatusConflict, "Resource already exists", false),
	CodeStateConflict: clientFault(http.StatusUnprocessableEntity, "State transition not allowed", true),
	CodeIdempotency:   clientFault(http.StatusConflict, "Idempotency key reused", true),
	CodeRateLimit:     clientFault(http.StatusTooManyRequests, "Too many requests", false),
	CodeInternal:      serverFault(http.StatusInternalServerError, "Internal server error", false),
	CodeDependency:    serverFault(http.StatusServiceUnavailable, "Service temporarily unavailable", true),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error carries a code, a client-safe message and an optional cause.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches cause to a new typed error. A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets structured details, rendered only for codes whose metadata allows it.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain has the given code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// HTTPStatus maps any error onto a status code; untyped errors are 500s.
func HTTPStatus(err error) int {
	if typed := As(err); typed != nil {
		return MetadataFor(typed.code).HTTPStatus
	}
	return http.StatusInternalServerError
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }

func Forbidden(message string) *Error { return New(CodeForbidden, message) }

func Conflict(message string) *Error { return New(CodeConflict, message) }

func RateLimited(message string) *Error { return New(CodeRateLimit, message) }

// NotFound builds the "<entity> <id> not found" message used across the catalog.
func NotFound(entity, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}
