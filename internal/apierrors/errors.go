// Package apierrors provides shared error types for the Peyflex client.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingToken is returned when no API token is provided.
	ErrMissingToken = errors.New("API token is required")

	// ErrMissingBaseURL is returned when the base URL is empty.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrUnauthorized is returned when the API token is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API token")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError is returned when the API kept answering with a 5xx status.
	ErrServerError = errors.New("server error")

	// ErrDecodeResponse is returned when a successful response is not valid JSON.
	ErrDecodeResponse = errors.New("invalid JSON response")
)

const (
	requestFailedPrefix = "API Request Failed: "
	decodeFailedPrefix  = "Failed to decode JSON response: "
)

// Error is the single error kind returned by API calls. Message is the
// human-readable text, StatusCode is zero when no response was received.
type Error struct {
	Message    string
	StatusCode int
	Err        error
}

// NewRequestError builds the error for a failed exchange.
func NewRequestError(statusCode int, message string, cause error) *Error {
	return &Error{
		Message:    requestFailedPrefix + message,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// NewDecodeError builds the error for a response body that could not be decoded.
func NewDecodeError(statusCode int, cause error) *Error {
	return &Error{
		Message:    decodeFailedPrefix + cause.Error(),
		StatusCode: statusCode,
		Err:        fmt.Errorf("%w: %w", ErrDecodeResponse, cause),
	}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s%d %s", requestFailedPrefix, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "API Request Failed"
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return target == ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrServerError
	}
	return false
}
