package generate

import (
	"errors"
	"fmt"
)

// RetryableError indicates a transient upstream failure: rate limiting,
// a 5xx, an overloaded stream or a stream cut short.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err wraps a *RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// APIError is a non-retryable error reported by the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("claude api %s (status %d): %s", e.Type, e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("claude api status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
