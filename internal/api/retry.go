package api

import (
	"math"
	"net/http"
	"time"
)

// maxDelay is returned when BaseDelay * 2^(attempt-1) does not fit in a
// time.Duration.
const maxDelay = time.Duration(math.MaxInt64)

// RetryPolicy decides, after every attempt, whether the request is sent again
// and how long to wait before doing so.
type RetryPolicy interface {
	// ShouldRetry is called after each attempt. attempt is the number of
	// retries already performed, so it is 0 after the first attempt. resp is
	// nil when no response was received, err is nil when one was.
	ShouldRetry(attempt int, req *http.Request, resp *http.Response, err error) bool
	// Backoff returns the delay before the given retry. attempt is 1-indexed.
	Backoff(attempt int) time.Duration
}

// RetryFunc is the decision half of a RetryPolicy.
type RetryFunc func(attempt int, req *http.Request, resp *http.Response, err error) bool

// BackoffFunc is the delay half of a RetryPolicy.
type BackoffFunc func(attempt int) time.Duration

type funcPolicy struct {
	retry   RetryFunc
	backoff BackoffFunc
}

// NewRetryPolicy combines plain functions into a RetryPolicy. A nil backoff
// retries immediately.
func NewRetryPolicy(retry RetryFunc, backoff BackoffFunc) RetryPolicy {
	return &funcPolicy{retry: retry, backoff: backoff}
}

func (p *funcPolicy) ShouldRetry(attempt int, req *http.Request, resp *http.Response, err error) bool {
	if p.retry == nil {
		return false
	}
	return p.retry(attempt, req, resp, err)
}

func (p *funcPolicy) Backoff(attempt int) time.Duration {
	if p.backoff == nil {
		return 0
	}
	return p.backoff(attempt)
}

// ExponentialBackoff is the default RetryPolicy. Connection failures are
// always retried, 5xx responses are retried until MaxRetries is reached and
// every other status is returned as is.
type ExponentialBackoff struct {
	// MaxRetries caps retries on 5xx responses.
	MaxRetries int
	// BaseDelay is the delay before the first retry. It doubles afterwards.
	BaseDelay time.Duration
	// MaxDelay caps a single delay. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the default policy with the given retry count.
func DefaultRetryPolicy(maxRetries int) *ExponentialBackoff {
	return &ExponentialBackoff{
		MaxRetries: maxRetries,
		BaseDelay:  DefaultRetryDelay,
	}
}

// ShouldRetry implements RetryPolicy.
func (p *ExponentialBackoff) ShouldRetry(attempt int, _ *http.Request, resp *http.Response, err error) bool {
	if resp == nil {
		return err != nil
	}
	if resp.StatusCode >= 500 {
		return attempt < p.MaxRetries
	}
	return false
}

// Backoff implements RetryPolicy: BaseDelay * 2^(attempt-1), saturating at
// the largest time.Duration before MaxDelay is applied.
func (p *ExponentialBackoff) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1

	delay := maxDelay
	if shift < 63 {
		if d := p.BaseDelay << shift; d > 0 && d>>shift == p.BaseDelay {
			delay = d
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
