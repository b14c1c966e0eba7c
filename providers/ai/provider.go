package ai

import "context"

// Provider is the capability set every backend adapter must implement:
// model listing, chat completion (sync and streaming), and text embedding.
// An adapter's credential, base URL, and transport are fixed at construction
// time; implementations must not re-read configuration mid-session.
//
// All methods return typed errors from this package (TransportError,
// HTTPStatusError, DecodeError, or a sentinel) so callers can classify
// failures with errors.Is / errors.As. Advisory behavior, such as treating a
// failed model listing as an empty result, belongs to the caller, not to the
// adapter.
type Provider interface {
	// Name returns the backend identifier, e.g. "openai" or "anthropic".
	Name() string

	// ListModels returns the models advertised by the backend.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// CompleteChat sends a chat request and blocks until the full
	// response is available.
	CompleteChat(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// StreamChat sends a chat request with streaming enabled and returns
	// a ChatStream yielding normalized chunks as they arrive. Pre-stream
	// errors (auth, bad request, connectivity) are returned directly;
	// mid-stream errors are yielded through the iterator.
	StreamChat(ctx context.Context, request ChatRequest) (*ChatStream, error)

	// Embed computes vector embeddings for one or more input texts.
	// Adapters whose backend has no embeddings endpoint return
	// ErrCapabilityNotSupported.
	Embed(ctx context.Context, request EmbeddingRequest) (*EmbeddingResponse, error)
}
