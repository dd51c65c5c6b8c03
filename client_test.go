package peyflex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// recordedRequest is what the test server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
	Header http.Header
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, rec recordedRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: r.Header.Clone(),
		}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		handler(w, r, rec)
	}))
	t.Cleanup(server.Close)
	return server
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonReader(body string) io.Reader {
	return strings.NewReader(body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func fastRetries(n int) Option {
	return WithRetryPolicy(&ExponentialBackoff{MaxRetries: n, BaseDelay: time.Millisecond})
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(testToken, append([]Option{WithBaseURL(baseURL), fastRetries(3)}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(testToken)
	require.NoError(t, err)

	assert.Equal(t, "https://client.peyflex.com.ng/api/", client.BaseURL())
	assert.Equal(t, 30*time.Second, client.Timeout())
	assert.Equal(t, 3, client.Retries())
}

func TestNew_Options(t *testing.T) {
	client, err := New(testToken,
		WithBaseURL("https://test.com/api"),
		WithTimeout(15*time.Second),
		WithRetries(5),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://test.com/api/", client.BaseURL())
	assert.Equal(t, 15*time.Second, client.Timeout())
	assert.Equal(t, 5, client.Retries())
}

func TestNew_EmptyBaseURL(t *testing.T) {
	_, err := New(testToken, WithBaseURL(""))
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}

func TestNew_NegativeRetries(t *testing.T) {
	client, err := New(testToken, WithRetries(-2))
	require.NoError(t, err)
	assert.Equal(t, 0, client.Retries())
}

func TestClient_Methods(t *testing.T) {
	tests := []struct {
		name      string
		call      func(ctx context.Context, c *Client) (Response, error)
		method    string
		path      string
		wantQuery map[string]string
		wantBody  map[string]any
	}{
		{
			name:   "GetProfile",
			call:   func(ctx context.Context, c *Client) (Response, error) { return c.GetProfile(ctx) },
			method: http.MethodGet,
			path:   "/api/user/profile",
		},
		{
			name:   "GetBalance",
			call:   func(ctx context.Context, c *Client) (Response, error) { return c.GetBalance(ctx) },
			method: http.MethodGet,
			path:   "/api/user/balance",
		},
		{
			name:   "GetAirtimeNetworks",
			call:   func(ctx context.Context, c *Client) (Response, error) { return c.GetAirtimeNetworks(ctx) },
			method: http.MethodGet,
			path:   "/api/airtime/networks",
		},
		{
			name: "PurchaseAirtime",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.PurchaseAirtime(ctx, "mtn", "08012345678", 100)
			},
			method:   http.MethodPost,
			path:     "/api/airtime/purchase",
			wantBody: map[string]any{"network": "mtn", "phone": "08012345678", "amount": float64(100)},
		},
		{
			name:   "GetDataNetworks",
			call:   func(ctx context.Context, c *Client) (Response, error) { return c.GetDataNetworks(ctx) },
			method: http.MethodGet,
			path:   "/api/data/networks",
		},
		{
			name: "GetDataPlans",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.GetDataPlans(ctx, "mtn_sme_data")
			},
			method:    http.MethodGet,
			path:      "/api/data/plans",
			wantQuery: map[string]string{"network": "mtn_sme_data"},
		},
		{
			name: "PurchaseData",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.PurchaseData(ctx, "mtn_sme_data", "08012345678", "M1GB")
			},
			method:   http.MethodPost,
			path:     "/api/data/purchase",
			wantBody: map[string]any{"network": "mtn_sme_data", "phone": "08012345678", "plan": "M1GB"},
		},
		{
			name:   "GetCableProviders",
			call:   func(ctx context.Context, c *Client) (Response, error) { return c.GetCableProviders(ctx) },
			method: http.MethodGet,
			path:   "/api/cable/providers",
		},
		{
			name: "VerifyCable",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.VerifyCable(ctx, "dstv", "1234567890")
			},
			method:   http.MethodPost,
			path:     "/api/cable/verify",
			wantBody: map[string]any{"provider": "dstv", "iuc_number": "1234567890"},
		},
		{
			name: "PurchaseCable",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.PurchaseCable(ctx, "dstv", "1234567890", "dstv-padi")
			},
			method:   http.MethodPost,
			path:     "/api/cable/purchase",
			wantBody: map[string]any{"provider": "dstv", "iuc_number": "1234567890", "plan": "dstv-padi"},
		},
		{
			name:      "GetElectricityPlans",
			call:      func(ctx context.Context, c *Client) (Response, error) { return c.GetElectricityPlans(ctx) },
			method:    http.MethodGet,
			path:      "/api/electricity/plans",
			wantQuery: map[string]string{"identifier": "electricity"},
		},
		{
			name: "VerifyMeter",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.VerifyMeter(ctx, "ikeja-electric", "45012345678", MeterPostpaid)
			},
			method: http.MethodPost,
			path:   "/api/electricity/verify",
			wantBody: map[string]any{
				"identifier":   "electricity",
				"provider":     "ikeja-electric",
				"meter_number": "45012345678",
				"type":         "postpaid",
			},
		},
		{
			name: "PurchaseElectricity",
			call: func(ctx context.Context, c *Client) (Response, error) {
				return c.PurchaseElectricity(ctx, "ikeja-electric", "45012345678", 2500.5, MeterPrepaid)
			},
			method: http.MethodPost,
			path:   "/api/electricity/purchase",
			wantBody: map[string]any{
				"provider":     "ikeja-electric",
				"meter_number": "45012345678",
				"amount":       2500.5,
				"type":         "prepaid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got recordedRequest
			server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, rec recordedRequest) {
				got = rec
				writeJSON(w, http.StatusOK, `{"status":"success","data":{"ok":true}}`)
			})
			client := newTestClient(t, server.URL+"/api")

			resp, err := tt.call(context.Background(), client)
			require.NoError(t, err)

			assert.Equal(t, "success", resp["status"])
			assert.Equal(t, map[string]any{"ok": true}, resp["data"])

			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, "Bearer "+testToken, got.Header.Get("Authorization"))
			assert.Equal(t, "application/json", got.Header.Get("Accept"))
			assert.Equal(t, "application/json", got.Header.Get("Content-Type"))

			wantQuery := tt.wantQuery
			if wantQuery == nil {
				wantQuery = map[string]string{}
			}
			assert.Equal(t, wantQuery, got.Query)
			assert.Equal(t, tt.wantBody, got.Body)
		})
	}
}

func TestClient_MeterTypeDefaultsToPrepaid(t *testing.T) {
	var bodies []map[string]any
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, rec recordedRequest) {
		bodies = append(bodies, rec.Body)
		writeJSON(w, http.StatusOK, `{"status":"success"}`)
	})
	client := newTestClient(t, server.URL)

	_, err := client.VerifyMeter(context.Background(), "ikeja-electric", "45012345678", "")
	require.NoError(t, err)
	_, err = client.PurchaseElectricity(context.Background(), "ikeja-electric", "45012345678", 1000, "")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, "prepaid", bodies[0]["type"])
	assert.Equal(t, "prepaid", bodies[1]["type"])
}

func TestClient_PreservesNumbers(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		writeJSON(w, http.StatusOK, `{"balance":12345678901234567890,"reference":1.10}`)
	})
	client := newTestClient(t, server.URL)

	resp, err := client.GetBalance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, json.Number("12345678901234567890"), resp["balance"])
	assert.Equal(t, json.Number("1.10"), resp["reference"])
}

func TestClient_RetryIsTransparent(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		if calls.Add(1) <= 2 {
			writeJSON(w, http.StatusServiceUnavailable, `{"message":"try later"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"balance":"1000.00"}`)
	})
	client := newTestClient(t, server.URL)

	resp, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000.00", resp["balance"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{"message":"Service unavailable"}`)
	})
	client := newTestClient(t, server.URL)

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)

	assert.Equal(t, int32(4), calls.Load(), "1 attempt + 3 retries")
	assert.Equal(t, "API Request Failed: Service unavailable", err.Error())
	assert.ErrorIs(t, err, ErrServerError)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClient_ZeroRetries(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, `{}`)
	})
	client := newTestClient(t, server.URL, fastRetries(0))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, `{"message":"Insufficient balance"}`)
	})
	client := newTestClient(t, server.URL)

	_, err := client.PurchaseAirtime(context.Background(), "mtn", "08012345678", 100)
	require.Error(t, err)

	assert.Equal(t, "API Request Failed: Insufficient balance", err.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ErrorSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
				writeJSON(w, tt.status, `{"error":"nope"}`)
			})
			client := newTestClient(t, server.URL)

			_, err := client.GetProfile(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "API Request Failed: nope", err.Error())
		})
	}
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		w.WriteHeader(http.StatusForbidden)
	})
	client := newTestClient(t, server.URL+"/api/")

	_, err := client.GetBalance(context.Background())
	require.Error(t, err)

	want := fmt.Sprintf("API Request Failed: GET %s/api/user/balance resulted in a `403 Forbidden` response", server.URL)
	assert.Equal(t, want, err.Error())
}

func TestClient_MalformedJSON(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		writeJSON(w, http.StatusOK, `{"status":`)
	})
	client := newTestClient(t, server.URL)

	_, err := client.GetBalance(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDecodeResponse)
	assert.Contains(t, err.Error(), "Failed to decode JSON response: ")
}

func TestClient_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url, WithRetryPolicy(NewRetryPolicy(
		func(attempt int, _ *http.Request, _ *http.Response, _ error) bool { return attempt < 2 },
		func(int) time.Duration { return time.Millisecond },
	)))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "API Request Failed: ")
}

func TestClient_ContextCanceled(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, _ recordedRequest) {
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	})
	client := newTestClient(t, server.URL, WithRetryPolicy(&ExponentialBackoff{
		MaxRetries: 100,
		BaseDelay:  50 * time.Millisecond,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.GetProfile(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_WithTransport(t *testing.T) {
	var seen *http.Request
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(jsonReader(`{"networks":["mtn","glo"]}`)),
			Request:    req,
		}, nil
	})

	client, err := New(testToken, WithTransport(transport))
	require.NoError(t, err)

	resp, err := client.GetAirtimeNetworks(context.Background())
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "https://client.peyflex.com.ng/api/airtime/networks", seen.URL.String())
	assert.Equal(t, []any{"mtn", "glo"}, resp["networks"])
}

func TestClient_WithUserAgent(t *testing.T) {
	var ua string
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request, rec recordedRequest) {
		ua = rec.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{}`)
	})
	client := newTestClient(t, server.URL, WithUserAgent("billing-worker/2.1"))

	_, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "billing-worker/2.1", ua)
}

func ExampleNew() {
	client, err := New("your-api-token", WithTimeout(15*time.Second))
	if err != nil {
		panic(err)
	}
	fmt.Println(client.BaseURL())
	// Output: https://client.peyflex.com.ng/api/
}

func ExampleClient_GetBalance() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"1500.00"}`))
	}))
	defer server.Close()

	client, err := New("your-api-token", WithBaseURL(server.URL))
	if err != nil {
		panic(err)
	}

	resp, err := client.GetBalance(context.Background())
	if err != nil {
		panic(err)
	}
	fmt.Println(resp["balance"])
	// Output: 1500.00
}
