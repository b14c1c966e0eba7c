// Package openai implements the ai.Provider capability set against any
// OpenAI-compatible HTTP backend: GET /models, POST /chat/completions
// (sync and SSE streaming), and POST /embeddings with bearer-token
// authorization. DeepSeek, Zhipu, and other compatible endpoints work by
// overriding the base URL.
package openai

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zhwei/convo/internal/httpx"
	"github.com/zhwei/convo/providers/ai"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	modelsEndpoint          = "/models"
	chatCompletionsEndpoint = "/chat/completions"
	embeddingsEndpoint      = "/embeddings"
)

// defaultTimeout bounds every request. Generation can be slow, so the limit
// is generous; a timeout surfaces as an ai.TransportError like any other
// connectivity failure.
const defaultTimeout = 5 * time.Minute

// Provider implements ai.Provider for OpenAI-compatible backends.
// Configuration is fixed once construction finishes; the With* builders are
// construction-time only.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Compile-time check: Provider must implement ai.Provider.
var _ ai.Provider = (*Provider)(nil)

// New creates a provider configured from the environment: OPENAI_API_KEY for
// the credential and OPENAI_BASE_URL for the endpoint, falling back to the
// official API URL.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// WithAPIKey sets the API key used for bearer authorization.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL. A trailing slash is stripped so
// endpoint paths concatenate cleanly.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHTTPClient sets a custom HTTP client, replacing the default one and
// its timeout.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	return p
}

// Name implements ai.Provider.
func (p *Provider) Name() string { return "openai" }

// ListModels fetches the models advertised by the backend.
func (p *Provider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	resp, err := httpx.DoGetSync[modelListResponse](ctx, p.client, p.baseURL+modelsEndpoint, p.apiKey, "list models")
	if err != nil {
		return nil, err
	}

	models := make([]ai.ModelInfo, 0, len(resp.Data))
	for _, model := range resp.Data {
		models = append(models, ai.ModelInfo{ID: model.ID, OwnedBy: model.OwnedBy})
	}
	return models, nil
}

// CompleteChat sends a non-streaming chat completion request and returns the
// normalized response.
func (p *Provider) CompleteChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	body := chatCompletionRequestFromGeneric(request, false)

	resp, err := httpx.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, body, "chat completion")
	if err != nil {
		return nil, err
	}

	return resp.toGeneric(), nil
}

// Embed computes embeddings for the request inputs. A single input is sent
// as a bare string, multiple inputs as an array, matching the wire contract.
func (p *Provider) Embed(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	body := embeddingRequestFromGeneric(request)

	resp, err := httpx.DoPostSync[embeddingResponse](ctx, p.client, p.baseURL+embeddingsEndpoint, p.apiKey, body, "embeddings")
	if err != nil {
		return nil, err
	}

	return resp.toGeneric(), nil
}
