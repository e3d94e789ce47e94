package inference

import (
	"errors"
	"fmt"
	"net"
)

// APIError is a non-2xx response from the AI service. Server-side statuses
// (5xx) are transient and retry-eligible; client statuses (4xx) are not.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai service returned status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError is a 2xx response whose body could not be decoded.
// It is never retried.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("ai service returned malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsTransient classifies an error as retry-eligible: a 5xx response from the
// remote endpoint or a network timeout. Client errors and malformed responses
// propagate immediately.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
