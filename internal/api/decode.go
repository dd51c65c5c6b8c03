package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/peyflex/client-go/internal/apierrors"
)

// Response is a decoded JSON object exactly as the API returned it.
// Numbers are kept as json.Number.
type Response map[string]any

// decodeResponse parses a successful body. Anything that is not exactly one
// JSON object fails, so callers never see partial data.
func decodeResponse(statusCode int, body []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out Response
	if err := dec.Decode(&out); err != nil {
		return nil, apierrors.NewDecodeError(statusCode, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apierrors.NewDecodeError(statusCode, errors.New("invalid character after top-level value"))
	}
	if out == nil {
		return nil, apierrors.NewDecodeError(statusCode, errors.New("response is not a JSON object"))
	}
	return out, nil
}

// parseErrorResponse builds the error for a status >= 400. The body's
// "message" field wins over "error"; without either the status line is used.
func parseErrorResponse(req *http.Request, resp *http.Response, body []byte) error {
	message := fmt.Sprintf("%s %s resulted in a `%d %s` response",
		req.Method, req.URL.String(), resp.StatusCode, http.StatusText(resp.StatusCode))

	var errResp map[string]any
	if err := json.Unmarshal(body, &errResp); err == nil {
		if v, ok := errResp["message"]; ok && v != nil {
			message = stringify(v)
		} else if v, ok := errResp["error"]; ok && v != nil {
			message = stringify(v)
		}
	}

	return apierrors.NewRequestError(resp.StatusCode, message, nil)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
