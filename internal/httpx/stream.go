package httpx

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zhwei/convo/providers/ai"
)

// maxSSELineSize is the maximum size of a single SSE line (1 MB). The default
// bufio.Scanner limit is 64 KiB, which is too small for long completions. If
// a line exceeds this limit the scanner returns a wrapped bufio.ErrTooLong
// via the Next() error path.
const maxSSELineSize = 1 * 1024 * 1024

// DoPostStream performs a POST request and returns the response with its body
// left open for SSE reading. The caller owns the body and must close it when
// done. On error paths the body is drained and closed before returning.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, op string) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("httpx: marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("httpx: creating request: %w", err)
	}
	setCommonHeaders(req, apiKey)
	req.Header.Set("Accept", "text/event-stream")

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, &ai.TransportError{Op: op, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, &ai.HTTPStatusError{StatusCode: response.StatusCode, Body: []byte(fmt.Sprintf("(failed to read body: %v)", readErr))}
		}
		return nil, &ai.HTTPStatusError{StatusCode: response.StatusCode, Body: errorBody}
	}

	return response, nil
}

// SSEScanner reads server-sent events from an io.Reader, line by line. Blank
// lines and comment lines are skipped; only "data:" lines are candidates.
// The literal "[DONE]" sentinel terminates the sequence via io.EOF, the
// OpenAI-compatible convention for end of stream.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner reading from reader. Individual lines
// up to maxSSELineSize are supported.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next SSE data payload. It returns io.EOF when the stream
// is exhausted or the [DONE] sentinel is encountered; [DONE] is a normal end
// of sequence, not an error.
func (s *SSEScanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			continue
		}

		// SSE comment
		if strings.HasPrefix(line, ":") {
			continue
		}

		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return "", io.EOF
			}
			if data == "" {
				continue
			}
			return data, nil
		}

		// Other SSE fields (event:, id:, retry:) carry no payload for
		// the OpenAI-compatible contract.
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("httpx: SSE scanner: %w", err)
	}

	return "", io.EOF
}
