package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/peyflex/client-go/internal/apierrors"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://client.peyflex.com.ng/api/"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultUserAgent  = "peyflex-go/1.0"

	// HeaderRequestID carries the per-call request ID.
	HeaderRequestID = "X-Request-ID"

	tracerName = "github.com/peyflex/client-go"
)

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Config holds the API client configuration.
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds a single attempt. Ignored when HTTPClient is set.
	Timeout time.Duration
	// HTTPClient is used as a template; it is copied, never mutated.
	HTTPClient *http.Client
	// Transport replaces the HTTP client's RoundTripper.
	Transport      http.RoundTripper
	RetryPolicy    RetryPolicy
	Limiter        *rate.Limiter
	Logger         *zerolog.Logger
	TracerProvider trace.TracerProvider
	UserAgent      string
	// NewRequestID generates the X-Request-ID value (default: uuid).
	NewRequestID func() string
}

// Client is the HTTP API client. It is safe for concurrent use.
type Client struct {
	baseURL      string
	token        string
	userAgent    string
	httpClient   *http.Client
	policy       RetryPolicy
	logger       zerolog.Logger
	tracer       trace.Tracer
	newRequestID func() string
}

// NewClient creates a new API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, apierrors.ErrMissingToken
	}

	baseURL, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:      baseURL,
		token:        cfg.Token,
		userAgent:    cfg.UserAgent,
		httpClient:   buildHTTPClient(cfg),
		policy:       cfg.RetryPolicy,
		logger:       zerolog.Nop(),
		newRequestID: cfg.NewRequestID,
	}

	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.policy == nil {
		c.policy = DefaultRetryPolicy(DefaultMaxRetries)
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	}
	if c.newRequestID == nil {
		c.newRequestID = func() string { return uuid.New().String() }
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(tracerName)

	return c, nil
}

// NormalizeBaseURL validates raw and makes it end with exactly one slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apierrors.ErrMissingBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", raw)
	}

	return strings.TrimRight(raw, "/") + "/", nil
}

func buildHTTPClient(cfg Config) *http.Client {
	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	} else {
		hc.Timeout = cfg.Timeout
		if hc.Timeout <= 0 {
			hc.Timeout = DefaultTimeout
		}
	}

	if cfg.Transport != nil {
		hc.Transport = cfg.Transport
	}
	// retryablehttp closes idle connections of this client after a failed
	// call, so it must not share http.DefaultTransport.
	if hc.Transport == nil {
		hc.Transport = cleanhttp.DefaultPooledTransport()
	}
	if cfg.Limiter != nil {
		hc.Transport = &rateLimitedTransport{next: hc.Transport, limiter: cfg.Limiter}
	}
	return &hc
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// RetryPolicy returns the active retry policy.
func (c *Client) RetryPolicy() RetryPolicy {
	return c.policy
}

// Do sends the request, retrying per the client's policy, and decodes the
// JSON object in the response. Every failure is an *apierrors.Error.
func (c *Client) Do(ctx context.Context, r *Request) (Response, error) {
	requestID := c.newRequestID()
	ctx, span := c.tracer.Start(ctx, "peyflex "+r.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("peyflex.path", r.Path),
			attribute.String("peyflex.request_id", requestID),
		),
	)
	defer span.End()

	log := c.logger.With().
		Str("method", r.Method).
		Str("path", r.Path).
		Str("request_id", requestID).
		Logger()
	start := time.Now()

	req, err := c.newRequest(ctx, r, requestID)
	if err != nil {
		return nil, c.fail(span, log, apierrors.NewRequestError(0, err.Error(), err))
	}

	retries := 0
	resp, err := c.retryClient(req, log, &retries).Do(req)
	span.SetAttributes(attribute.Int("peyflex.retries", retries))
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, c.fail(span, log, apierrors.NewRequestError(0, err.Error(), err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, log, apierrors.NewRequestError(resp.StatusCode, err.Error(), err))
	}

	if resp.StatusCode >= 400 {
		return nil, c.fail(span, log, parseErrorResponse(req.Request, resp, body))
	}

	out, err := decodeResponse(resp.StatusCode, body)
	if err != nil {
		return nil, c.fail(span, log, err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("retries", retries).
		Dur("elapsed", time.Since(start)).
		Msg("peyflex request completed")
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, r *Request, requestID string) (*retryablehttp.Request, error) {
	var body any
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = data
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, c.url(r), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func (c *Client) url(r *Request) string {
	u := c.baseURL + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// retryClient binds the policy to one call. retryablehttp's CheckRetry does
// not see the attempt number, so it is tracked in retries.
func (c *Client) retryClient(req *retryablehttp.Request, log zerolog.Logger, retries *int) *retryablehttp.Client {
	return &retryablehttp.Client{
		HTTPClient: c.httpClient,
		Logger:     leveledLogger{log: log},
		RetryMax:   math.MaxInt32,
		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			if errors.Is(err, errLimiterWait) {
				return false, nil
			}
			if !c.policy.ShouldRetry(*retries, req.Request, resp, err) {
				return false, nil
			}
			*retries++

			ev := log.Warn().Int("retry", *retries)
			if resp != nil {
				ev = ev.Int("status", resp.StatusCode)
			}
			ev.Err(err).Msg("retrying peyflex request")
			return true, nil
		},
		Backoff: func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
			return c.policy.Backoff(attemptNum + 1)
		},
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
}

func (c *Client) fail(span trace.Span, log zerolog.Logger, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Error().Err(err).Msg("peyflex request failed")
	return err
}
