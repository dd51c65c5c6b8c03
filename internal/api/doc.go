// Package api provides the HTTP transport for the Peyflex API. It handles
// bearer authentication, request/response serialization, and retries with
// exponential backoff for transient failures.
//
// # Client Creation
//
// [NewClient] takes a [Config]. Only the token is required; the base URL
// defaults to [DefaultBaseURL] at the public package level and is always
// normalized to end with a single slash.
//
// # Retry Behavior
//
// Retries are driven by a [RetryPolicy] evaluated after every attempt. The
// default [ExponentialBackoff] policy:
//
//   - retries connection failures (no response received) unconditionally,
//   - retries 5xx responses while fewer than MaxRetries retries were made,
//   - never retries any other status.
//
// The delay doubles with each retry (1s, 2s, 4s, ...). Cancelling the request
// context stops retrying.
//
// # Error Handling
//
// Every failure returned by [Client.Do] is an *apierrors.Error whose message
// prefers the response's "message" field, then its "error" field, then the
// transport error text.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
