// Package httpx holds the HTTP plumbing shared by the REST adapters:
// synchronous JSON requests, streaming requests whose body is left open for
// SSE consumption, and the SSE line scanner itself. Errors are reported with
// the typed taxonomy from providers/ai so adapters can pass them through
// unchanged.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/zhwei/convo/providers/ai"
)

// maxResponseBodySize caps response body reads (10 MB) to prevent unbounded
// memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxErrorPreviewLength caps the payload preview embedded in decode errors.
const maxErrorPreviewLength = 500

// DoGetSync performs a GET request with bearer authorization and decodes the
// JSON response body into OutputStruct.
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, op string) (*OutputStruct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpx: creating request: %w", err)
	}
	setCommonHeaders(req, apiKey)

	return doAndDecode[OutputStruct](client, req, op)
}

// DoPostSync performs a POST request with a JSON body and bearer
// authorization, then decodes the JSON response body into OutputStruct.
//
// Error handling strategy:
//   - connectivity failures (DNS, connect, TLS, timeout) surface as *ai.TransportError
//   - non-2xx responses surface as *ai.HTTPStatusError with the raw body
//   - malformed response bodies surface as *ai.DecodeError with a payload preview
//
// The response body is always closed; close errors are logged, never returned.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, op string) (*OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("httpx: marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("httpx: creating request: %w", err)
	}
	setCommonHeaders(req, apiKey)

	return doAndDecode[OutputStruct](client, req, op)
}

func doAndDecode[OutputStruct any](client *http.Client, req *http.Request, op string) (*OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, &ai.TransportError{Op: op, Err: err}
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, &ai.TransportError{Op: op, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &ai.HTTPStatusError{StatusCode: res.StatusCode, Body: respBody}
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return nil, &ai.DecodeError{Preview: Truncate(string(respBody), maxErrorPreviewLength), Err: err}
	}

	return &resStruct, nil
}

func setCommonHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// CloseWithLog closes the closer and logs a warning on failure instead of
// returning the error, so a close failure never overrides a primary error.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// Truncate shortens s to at most maxLen bytes, appending an ellipsis when
// data was omitted.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
