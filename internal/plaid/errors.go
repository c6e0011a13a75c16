package plaid

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Client wraps exactly one of these.
var (
	// ErrNotConfigured is returned when Plaid credentials are not set.
	ErrNotConfigured = errors.New("plaid: provider not configured")

	// ErrUpstreamUnavailable covers transport failures, timeouts, 5xx responses
	// and bodies that cannot be decoded.
	ErrUpstreamUnavailable = errors.New("plaid: provider unavailable")

	// ErrUpstreamRejected is returned when Plaid refuses a request for a reason
	// not covered by a more specific kind.
	ErrUpstreamRejected = errors.New("plaid: request rejected")

	// ErrInvalidToken is returned when a public token is malformed, expired or
	// already exchanged.
	ErrInvalidToken = errors.New("plaid: invalid public token")

	// ErrInvalidCredential is returned when an access token is revoked or the
	// item needs the user to re-link. Never retried.
	ErrInvalidCredential = errors.New("plaid: access credential no longer valid")

	// ErrRateLimited is returned when Plaid throttles the client. Retryable.
	ErrRateLimited = errors.New("plaid: rate limit exceeded")
)

// APIError represents an error response from the Plaid API.
type APIError struct {
	StatusCode   int
	ErrorType    string
	ErrorCode    string
	ErrorMessage string
	RequestID    string

	kind error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid API error: %s (status=%d, type=%s, code=%s, request_id=%s)",
		e.ErrorMessage, e.StatusCode, e.ErrorType, e.ErrorCode, e.RequestID)
}

// NewAPIError builds an APIError and classifies it the way responses are.
func NewAPIError(status int, errorType, errorCode, message string) *APIError {
	return &APIError{
		StatusCode:   status,
		ErrorType:    errorType,
		ErrorCode:    errorCode,
		ErrorMessage: message,
		kind:         classify(status, errorType, errorCode),
	}
}

// Unwrap exposes the failure kind to errors.Is.
func (e *APIError) Unwrap() error { return e.kind }

// IsRetryable returns true if the error might succeed on retry.
func (e *APIError) IsRetryable() bool {
	return errors.Is(e.kind, ErrRateLimited)
}

// classify maps an HTTP status and Plaid error code onto a failure kind.
func classify(status int, errorType, errorCode string) error {
	switch {
	case status == 429 || errorType == "RATE_LIMIT_EXCEEDED" || errorCode == "RATE_LIMIT_EXCEEDED":
		return ErrRateLimited
	case status >= 500:
		return ErrUpstreamUnavailable
	}

	switch errorCode {
	case "INVALID_ACCESS_TOKEN", "ITEM_LOGIN_REQUIRED", "ITEM_NOT_FOUND", "ACCESS_NOT_GRANTED":
		return ErrInvalidCredential
	case "INVALID_PUBLIC_TOKEN":
		return ErrInvalidToken
	}
	if errorType == "INVALID_ACCESS_TOKEN" {
		return ErrInvalidCredential
	}
	return ErrUpstreamRejected
}

// unavailable wraps a transport or decode failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}
