// Package client provides the conversational client: one backend adapter
// plus one conversation history, with the turn commit semantics that keep
// the history consistent across successful, failed, and cancelled turns.
package client

import (
	"context"
	"fmt"

	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/memory"
	"github.com/zhwei/convo/providers/memory/inmemory"
	"github.com/zhwei/convo/providers/observability"
)

// Client binds a backend adapter to a conversation history. One Client owns
// one history; turns are strictly sequential, one in-flight request at a
// time.
type Client struct {
	provider    ai.Provider
	history     memory.Store
	model       string
	temperature float64
	maxTokens   int
}

// Option configures a Client during construction.
type Option func(*options)

type options struct {
	history      memory.Store
	model        string
	temperature  float64
	maxTokens    int
	systemPrompt string
	hasSystem    bool
}

// WithHistory replaces the default in-memory history store.
func WithHistory(store memory.Store) Option {
	return func(o *options) { o.history = store }
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithSystemPrompt seeds the history with a system message.
func WithSystemPrompt(content string) Option {
	return func(o *options) {
		o.systemPrompt = content
		o.hasSystem = true
	}
}

// WithTemperature sets the sampling temperature for every turn. Zero keeps
// the provider default of ai.DefaultTemperature.
func WithTemperature(temperature float64) Option {
	return func(o *options) { o.temperature = temperature }
}

// WithMaxTokens caps response length for every turn. Values <= 0 leave the
// choice to the backend.
func WithMaxTokens(maxTokens int) Option {
	return func(o *options) { o.maxTokens = maxTokens }
}

// New creates a client for the given adapter. Without WithHistory the client
// owns a fresh in-memory store.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("client: provider must not be nil")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.history == nil {
		o.history = inmemory.New()
	}

	c := &Client{
		provider:    provider,
		history:     o.history,
		model:       o.model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
	}

	if o.hasSystem {
		if err := c.history.SetSystemPrompt(context.Background(), o.systemPrompt); err != nil {
			return nil, fmt.Errorf("client: seeding system prompt: %w", err)
		}
	}

	return c, nil
}

// Provider returns the backend adapter the client was constructed with.
func (c *Client) Provider() ai.Provider { return c.provider }

// SetSystemPrompt inserts or replaces the system message at index 0.
func (c *Client) SetSystemPrompt(ctx context.Context, content string) error {
	return c.history.SetSystemPrompt(ctx, content)
}

// SystemPrompt returns the current system prompt, or ok=false when unset.
func (c *Client) SystemPrompt(ctx context.Context) (string, bool, error) {
	return c.history.SystemPrompt(ctx)
}

// History returns a defensive copy of the conversation so far.
func (c *Client) History(ctx context.Context) ([]ai.Message, error) {
	return c.history.Messages(ctx)
}

// ClearHistory empties the conversation, optionally keeping the system
// message.
func (c *Client) ClearHistory(ctx context.Context, keepSystemPrompt bool) error {
	return c.history.Clear(ctx, keepSystemPrompt)
}

// Models lists the backend's models. The listing is advisory only: transport
// failures are logged and an empty list returned, never an error.
func (c *Client) Models(ctx context.Context) []ai.ModelInfo {
	models, err := c.provider.ListModels(ctx)
	if err != nil {
		if logger := observability.FromContext(ctx); logger != nil {
			logger.Warn(ctx, "model listing failed",
				observability.String("provider", c.provider.Name()),
				observability.Error(err),
			)
		}
		return []ai.ModelInfo{}
	}
	return models
}

// Embeddings computes vector embeddings through the backend adapter.
func (c *Client) Embeddings(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	return c.provider.Embed(ctx, request)
}

// Chat runs one synchronous turn: the text is appended as a user message,
// the full history is sent, and on success the assistant reply is appended.
// On failure the user message stays committed and no assistant message is
// added.
func (c *Client) Chat(ctx context.Context, text string) (*ai.ChatResponse, error) {
	if err := c.history.Append(ctx, ai.Message{Role: ai.RoleUser, Content: text}); err != nil {
		return nil, err
	}

	request, err := c.buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	response, err := c.provider.CompleteChat(ctx, request)
	if err != nil {
		c.logTurnFailed(ctx, err)
		return nil, err
	}

	if response.Content != "" {
		if err := c.history.Append(ctx, ai.Message{Role: ai.RoleAssistant, Content: response.Content}); err != nil {
			return response, err
		}
	}

	return response, nil
}

// StreamChat runs one streaming turn. onChunk, when non-nil, is invoked for
// every normalized chunk in arrival order; returning an error from it aborts
// the turn.
//
// Commit semantics: the user message is committed up front and stays on any
// outcome. The accumulated assistant text is committed as one message only
// when the stream finishes and yielded at least some content. A mid-stream
// failure, a cancelled context, or an onChunk abort leaves the history
// without an assistant message; partial output already handed to onChunk is
// not retracted.
func (c *Client) StreamChat(ctx context.Context, text string, onChunk func(ai.StreamChunk) error) (*ai.ChatResponse, error) {
	if err := c.history.Append(ctx, ai.Message{Role: ai.RoleUser, Content: text}); err != nil {
		return nil, err
	}

	request, err := c.buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := c.provider.StreamChat(ctx, request)
	if err != nil {
		c.logTurnFailed(ctx, err)
		return nil, err
	}

	response, err := c.consumeStream(ctx, stream, onChunk)
	if err != nil {
		c.logTurnFailed(ctx, err)
		return response, err
	}

	if response.Content != "" {
		if err := c.history.Append(ctx, ai.Message{Role: ai.RoleAssistant, Content: response.Content}); err != nil {
			return response, err
		}
	}

	return response, nil
}

func (c *Client) consumeStream(ctx context.Context, stream *ai.ChatStream, onChunk func(ai.StreamChunk) error) (*ai.ChatResponse, error) {
	accumulated := &ai.ChatResponse{}

	for chunk, err := range stream.Iter() {
		if err != nil {
			return accumulated, err
		}

		if chunk.ID != "" {
			accumulated.ID = chunk.ID
		}
		if chunk.Model != "" {
			accumulated.Model = chunk.Model
		}
		accumulated.Content += chunk.ContentDelta
		if chunk.FinishReason != "" {
			accumulated.FinishReason = chunk.FinishReason
		}
		if chunk.Usage != nil {
			accumulated.Usage = chunk.Usage
		}

		if onChunk != nil {
			if chunkErr := onChunk(chunk); chunkErr != nil {
				// Break out of the loop so the adapter releases
				// its transport resources.
				return accumulated, fmt.Errorf("client: chunk callback: %w", chunkErr)
			}
		}
	}

	return accumulated, nil
}

func (c *Client) buildRequest(ctx context.Context) (ai.ChatRequest, error) {
	messages, err := c.history.Messages(ctx)
	if err != nil {
		return ai.ChatRequest{}, err
	}
	return ai.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}, nil
}

func (c *Client) logTurnFailed(ctx context.Context, err error) {
	if logger := observability.FromContext(ctx); logger != nil {
		logger.Error(ctx, "turn failed",
			observability.String("provider", c.provider.Name()),
			observability.Error(err),
		)
	}
}
