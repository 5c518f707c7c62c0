package memos

import (
	"fmt"
)

// APIError is the base failure for every non-success server response. It is
// also returned directly for status codes no more specific type covers.
type APIError struct {
	Message      string
	StatusCode   int
	ResponseBody map[string]any
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// AuthenticationError is returned when the server rejects the caller's
// credentials (401) or denies access (403).
type AuthenticationError struct {
	APIError
}

// AuthorizationError marks access denied due to insufficient permissions.
// The client itself surfaces 403 responses as an AuthenticationError with an
// access-denied message; this type exists for callers mapping their own
// responses onto the taxonomy.
type AuthorizationError struct {
	APIError
}

// NotFoundError is returned when the requested resource does not exist.
type NotFoundError struct {
	APIError
}

// ValidationError is returned when the server rejects a request body (400).
type ValidationError struct {
	APIError
}

// RateLimitError is returned when the server throttles the caller (429).
// RetryAfter carries the server's hint, in seconds, when present.
type RateLimitError struct {
	APIError
	RetryAfter int
}

// ServerError is returned for 5xx responses.
type ServerError struct {
	APIError
}

// NetworkError is returned when the transport cannot complete the round
// trip. It wraps the underlying cause.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned synchronously at construction time, never
// from a remote call.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
