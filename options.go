package peyflex

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/peyflex/client-go/internal/api"
)

const (
	// DefaultBaseURL is the production Peyflex API endpoint.
	DefaultBaseURL = api.DefaultBaseURL
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = api.DefaultTimeout
	// DefaultRetries is the number of retries on 5xx responses.
	DefaultRetries = api.DefaultMaxRetries
)

// RetryPolicy decides whether an attempt is retried and how long to wait.
// ShouldRetry receives the number of retries already made (0 after the first
// attempt); Backoff receives the 1-indexed retry about to happen.
type RetryPolicy = api.RetryPolicy

// ExponentialBackoff is the default RetryPolicy: connection failures are
// always retried, 5xx responses up to MaxRetries times, with a delay of
// BaseDelay * 2^(attempt-1).
type ExponentialBackoff = api.ExponentialBackoff

// RetryFunc is the decision half of a RetryPolicy.
type RetryFunc = api.RetryFunc

// BackoffFunc is the delay half of a RetryPolicy.
type BackoffFunc = api.BackoffFunc

// NewRetryPolicy builds a RetryPolicy from plain functions.
func NewRetryPolicy(retry RetryFunc, backoff BackoffFunc) RetryPolicy {
	return api.NewRetryPolicy(retry, backoff)
}

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL        string
	timeout        time.Duration
	retries        int
	retryPolicy    RetryPolicy
	httpClient     *http.Client
	transport      http.RoundTripper
	logger         *zerolog.Logger
	tracerProvider trace.TracerProvider
	limiter        *rate.Limiter
	userAgent      string
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL. A trailing slash is added if missing.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets the timeout of a single HTTP attempt.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets how many times a 5xx response is retried.
// Default: 3
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryPolicy replaces the retry policy. It takes precedence over
// WithRetries.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *clientConfig) {
		c.retryPolicy = policy
	}
}

// WithHTTPClient sets a custom HTTP client. The client is copied, so its
// own Timeout applies and WithTimeout is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTransport sets the RoundTripper used for every attempt. Useful for
// injecting canned responses in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithLogger sets the logger. Default: disabled.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = &logger
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracerProvider = tp
	}
}

// WithRateLimit limits outgoing attempts, retries included, to limit per
// second with the given burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *clientConfig) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}
