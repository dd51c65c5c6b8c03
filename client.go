package peyflex

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/peyflex/client-go/internal/api"
)

// Response is a decoded JSON object exactly as the API returned it. Numbers
// are json.Number values so amounts and references keep their precision.
type Response = api.Response

// Client is the Peyflex API client. It is safe for concurrent use;
// configuration is fixed at construction.
type Client struct {
	apiClient *api.Client
	timeout   time.Duration
	retries   int
}

// New creates a new Peyflex client with the given API token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		retries: DefaultRetries,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := buildAPIClient(token, cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiClient: apiClient,
		timeout:   apiClient.HTTPClient().Timeout,
		retries:   cfg.retries,
	}
	if p, ok := apiClient.RetryPolicy().(*ExponentialBackoff); ok {
		c.retries = p.MaxRetries
	}
	return c, nil
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(token string, cfg *clientConfig) (*api.Client, error) {
	policy := cfg.retryPolicy
	if policy == nil {
		retries := cfg.retries
		if retries < 0 {
			retries = 0
		}
		policy = api.DefaultRetryPolicy(retries)
	}

	return api.NewClient(api.Config{
		BaseURL:        cfg.baseURL,
		Token:          token,
		Timeout:        cfg.timeout,
		HTTPClient:     cfg.httpClient,
		Transport:      cfg.transport,
		RetryPolicy:    policy,
		Limiter:        cfg.limiter,
		Logger:         cfg.logger,
		TracerProvider: cfg.tracerProvider,
		UserAgent:      cfg.userAgent,
	})
}

// BaseURL returns the effective base URL, always ending with a single slash.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

// Timeout returns the per-attempt timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Retries returns the configured 5xx retry count.
func (c *Client) Retries() int {
	return c.retries
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) (Response, error) {
	req := &api.Request{Method: http.MethodGet, Path: path}
	if len(query) > 0 {
		req.Query = url.Values{}
		for k, v := range query {
			req.Query.Set(k, v)
		}
	}
	return c.apiClient.Do(ctx, req)
}

func (c *Client) post(ctx context.Context, path string, body any) (Response, error) {
	return c.apiClient.Do(ctx, &api.Request{Method: http.MethodPost, Path: path, Body: body})
}
