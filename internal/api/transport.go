package api

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// errLimiterWait marks local limiter failures so they are not retried as
// connection failures.
var errLimiterWait = errors.New("rate limit wait")

// rateLimitedTransport waits for a limiter token before every attempt,
// retries included.
type rateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("%w: %w", errLimiterWait, err)
	}

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}
