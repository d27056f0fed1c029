package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a failed call to the forge REST API
type APIError struct {
	Op      string // Operation that failed
	Message string // Error message
	Status  int    // HTTP status code (if applicable)
	Err     error  // Underlying error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(op, message string, err error) *APIError {
	return &APIError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewAPIHTTPError creates a new APIError with HTTP status
func NewAPIHTTPError(op string, status int, message string) *APIError {
	return &APIError{
		Op:      op,
		Status:  status,
		Message: message,
	}
}

func statusOf(err error) int {
	var ae *APIError
	if stderrors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// IsNotFound checks if the error indicates the organization was not found
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized checks if the forge rejected the credentials
func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsRateLimitExceeded checks if the error indicates rate limit was exceeded
func IsRateLimitExceeded(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}
