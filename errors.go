package peyflex

import "github.com/peyflex/client-go/internal/apierrors"

// Error is the single error type returned by API calls. Message holds the
// human-readable text ("API Request Failed: ..." or "Failed to decode JSON
// response: ..."), StatusCode is zero when no response was received and Err
// is the underlying cause, if any.
type Error = apierrors.Error

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingToken is returned when no API token is provided.
	ErrMissingToken = apierrors.ErrMissingToken

	// ErrMissingBaseURL is returned when the base URL is set to an empty string.
	ErrMissingBaseURL = apierrors.ErrMissingBaseURL

	// ErrUnauthorized matches a 401 response.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrNotFound matches a 404 response.
	ErrNotFound = apierrors.ErrNotFound

	// ErrRateLimited matches a 429 response.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrServerError matches a 5xx response returned after retries ran out.
	ErrServerError = apierrors.ErrServerError

	// ErrDecodeResponse matches a successful response whose body is not a JSON object.
	ErrDecodeResponse = apierrors.ErrDecodeResponse
)
