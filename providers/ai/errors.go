package ai

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration-time failures. These are fatal for the
// process that hit them but are still returned, never printed-and-exited, so
// library callers decide how to surface them.
var (
	// ErrNoCredentialConfigured is returned by construction-time adapter
	// selection when no known API key is present in the environment.
	ErrNoCredentialConfigured = errors.New("ai: no credential configured")

	// ErrUnsupportedProvider is returned when a provider name does not
	// match any known adapter.
	ErrUnsupportedProvider = errors.New("ai: unsupported provider")

	// ErrCapabilityNotSupported is returned when an adapter's backend has
	// no endpoint for the requested capability (e.g. embeddings on a
	// chat-only vendor SDK).
	ErrCapabilityNotSupported = errors.New("ai: capability not supported by provider")
)

// TransportError wraps DNS, connect, TLS, and timeout failures. A request
// that times out is not distinguished from other connectivity errors.
type TransportError struct {
	Op  string // "list models", "chat completion", ...
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ai: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response from a backend. Body holds the
// raw response payload for diagnostics.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	body := string(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("ai: unexpected status %d: %s", e.StatusCode, body)
}

// DecodeError reports malformed JSON in a response body. Frame-level decode
// failures inside a stream are swallowed by the decoder and never reach
// callers; a DecodeError surfaces only for a whole-response body.
type DecodeError struct {
	Preview string // Truncated raw payload for diagnostics
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ai: decode error: %v (payload: %s)", e.Err, e.Preview)
}

func (e *DecodeError) Unwrap() error { return e.Err }
