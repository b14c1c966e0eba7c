// Package anthropic implements the ai.Provider capability set on top of the
// official Anthropic Go SDK. The adapter's sole responsibility is translating
// vendor-shaped messages and stream events into the normalized schema, so
// callers never special-case the backend.
package anthropic

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zhwei/convo/providers/ai"
)

// defaultMaxTokens stands in for "let the backend choose" because the vendor
// API makes the output cap mandatory.
const defaultMaxTokens = 4096

// Provider implements ai.Provider by wrapping the Anthropic SDK client.
// Configuration is fixed once construction finishes.
type Provider struct {
	client  *anthropic.Client
	apiKey  string
	baseURL string
}

// Compile-time check: Provider must implement ai.Provider.
var _ ai.Provider = (*Provider)(nil)

// New creates a provider configured from the environment: ANTHROPIC_API_KEY
// for the credential and the SDK's default endpoint.
func New() *Provider {
	p := &Provider{apiKey: os.Getenv("ANTHROPIC_API_KEY")}
	p.rebuild()
	return p
}

// WithAPIKey sets the API key. Construction-time only.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	p.rebuild()
	return p
}

// WithBaseURL overrides the vendor endpoint. Construction-time only; mainly
// useful for pointing tests at a local server.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	p.rebuild()
	return p
}

func (p *Provider) rebuild() {
	opts := []option.RequestOption{}
	if p.apiKey != "" {
		opts = append(opts, option.WithAPIKey(p.apiKey))
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	client := anthropic.NewClient(opts...)
	p.client = &client
}

// Name implements ai.Provider.
func (p *Provider) Name() string { return "anthropic" }

// ListModels fetches the vendor's model catalog and normalizes it. The
// vendor does not report ownership, so OwnedBy is the provider name.
func (p *Provider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, &ai.TransportError{Op: "list models", Err: err}
	}

	models := make([]ai.ModelInfo, 0, len(page.Data))
	for _, model := range page.Data {
		models = append(models, ai.ModelInfo{ID: string(model.ID), OwnedBy: "anthropic"})
	}
	return models, nil
}

// CompleteChat sends a non-streaming message request through the SDK and
// translates the vendor response into the normalized schema.
func (p *Provider) CompleteChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	message, err := p.client.Messages.New(ctx, paramsFromGeneric(request))
	if err != nil {
		return nil, &ai.TransportError{Op: "chat completion", Err: err}
	}

	return messageToGeneric(message), nil
}

// Embed is not available: the wrapped vendor exposes no embeddings endpoint.
func (p *Provider) Embed(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	return nil, ai.ErrCapabilityNotSupported
}
