// Package apperror provides domain-specific error types for Posterdesk.
// These errors carry an HTTP status code and a user-safe message. The Echo
// error handler maps them to appropriate HTTP responses automatically, and
// form handlers turn them into flash messages.
//
// NEVER return raw network or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error types. Handlers switch on these to build
// user-facing messages.
const (
	TypeNotFound       = "not_found"
	TypeBadRequest     = "bad_request"
	TypeUnauthorized   = "unauthorized"
	TypeForbidden      = "forbidden"
	TypeConflict       = "conflict"
	TypeValidation     = "validation_error"
	TypeInternal       = "internal_error"
	TypeUpstream       = "upstream_error"
	TypeUpstreamStatus = "upstream_status"
	TypeTransport      = "transport_error"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable error type, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`

	// UpstreamCode is the HTTP status a collaborator answered with. Only set
	// for TypeUpstreamStatus errors.
	UpstreamCode int `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors for common error types ---

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: message,
	}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeBadRequest,
		Message: message,
	}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    TypeUnauthorized,
		Message: message,
	}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Type:    TypeForbidden,
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeConflict,
		Message: message,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     TypeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe error message from an error. If the
// error is an AppError, returns its Message field (which is safe to expose).
// For any other error type, returns a generic message to prevent leaking
// internal details like table names, query structure, or stack traces.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// TypeOf returns the machine-readable Type of an AppError, or
// TypeInternal for anything else.
func TypeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeInternal
}

// NewValidation creates a 422 Unprocessable Entity error for validation failures.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeValidation,
		Message: message,
	}
}

// NewUpstream creates a 502 error for a collaborator that answered with an
// explicit error payload ({"error": ...} or {"errorMessage": ...}). The
// message is the collaborator's own text and is shown to the user.
func NewUpstream(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Type:    TypeUpstream,
		Message: message,
	}
}

// NewUpstreamStatus creates a 502 error for a collaborator that answered
// with a non-2xx HTTP status. body is the collaborator's reply text and is
// shown to the user.
func NewUpstreamStatus(status int, body string) *AppError {
	return &AppError{
		Code:         http.StatusBadGateway,
		Type:         TypeUpstreamStatus,
		Message:      body,
		Internal:     fmt.Errorf("upstream returned HTTP %d", status),
		UpstreamCode: status,
	}
}

// UpstreamStatus returns the collaborator HTTP status recorded by
// NewUpstreamStatus, or 0 if err is not an upstream status error.
func UpstreamStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 0
	}
	return appErr.UpstreamCode
}

// NewUnavailable creates a 503 error for a collaborator that could not be
// reached at all (connection refused, timeout, TLS failure).
func NewUnavailable(err error) *AppError {
	return &AppError{
		Code:     http.StatusServiceUnavailable,
		Type:     TypeTransport,
		Message:  "the service is temporarily unavailable",
		Internal: err,
	}
}
