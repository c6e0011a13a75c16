// Package errors provides the application error taxonomy.
// Service-layer failures are returned as *AppError so handlers can render
// consistent, field-addressable responses without leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional field-level messages
// and an optional internal cause.
type AppError struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Fields     map[string][]string `json:"fields,omitempty"`
	StatusCode int                 `json:"-"`
	Internal   error               `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so copies made by Wrap,
// WithMessage and WithFields still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Fields:     sentinel.Fields,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Fields:     sentinel.Fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithFields creates a new AppError carrying field-level messages keyed by
// the request field name.
func WithFields(sentinel *AppError, fields map[string][]string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Fields:     fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "One or more fields are invalid", StatusCode: http.StatusBadRequest}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Resource already exists", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Linked account errors.
var (
	ErrLinkedAccountNotFound = &AppError{Code: "LINKED_ACCOUNT_NOT_FOUND", Message: "Linked account not found", StatusCode: http.StatusNotFound}
	ErrNoLinkedAccounts      = &AppError{Code: "NO_LINKED_ACCOUNTS", Message: "No linked accounts found", StatusCode: http.StatusNotFound}
)

// Payment errors.
var (
	ErrPaymentNotFound = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found", StatusCode: http.StatusNotFound}
)

// Aggregation provider errors. Messages stay opaque; the provider detail
// travels in Internal and is only logged.
var (
	ErrUpstreamUnavailable = &AppError{Code: "UPSTREAM_UNAVAILABLE", Message: "The bank data provider is unavailable", StatusCode: http.StatusBadGateway}
	ErrUpstreamRejected    = &AppError{Code: "UPSTREAM_REJECTED", Message: "The bank data provider rejected the request", StatusCode: http.StatusBadGateway}
	ErrInvalidToken        = &AppError{Code: "INVALID_PUBLIC_TOKEN", Message: "The public token is invalid, expired or already used", StatusCode: http.StatusBadRequest}
	ErrInvalidCredential   = &AppError{Code: "INVALID_CREDENTIAL", Message: "The bank connection must be re-linked", StatusCode: http.StatusBadGateway}
	ErrRateLimited         = &AppError{Code: "UPSTREAM_RATE_LIMITED", Message: "The bank data provider is rate limiting requests", StatusCode: http.StatusServiceUnavailable}
)
