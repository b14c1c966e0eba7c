package client

import (
	"context"
	"errors"
	"testing"

	"github.com/zhwei/convo/providers/ai"
)

// fakeProvider scripts adapter behavior through function fields; unset fields
// fail the capability.
type fakeProvider struct {
	completeChat func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)
	streamChat   func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error)
	listModels   func(ctx context.Context) ([]ai.ModelInfo, error)
	embed        func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResponse, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	if f.listModels == nil {
		return nil, ai.ErrCapabilityNotSupported
	}
	return f.listModels(ctx)
}

func (f *fakeProvider) CompleteChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if f.completeChat == nil {
		return nil, ai.ErrCapabilityNotSupported
	}
	return f.completeChat(ctx, request)
}

func (f *fakeProvider) StreamChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	if f.streamChat == nil {
		return nil, ai.ErrCapabilityNotSupported
	}
	return f.streamChat(ctx, request)
}

func (f *fakeProvider) Embed(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	if f.embed == nil {
		return nil, ai.ErrCapabilityNotSupported
	}
	return f.embed(ctx, request)
}

func scriptedStream(chunks []ai.StreamChunk, err error) *ai.ChatStream {
	return ai.NewChatStream(func(yield func(ai.StreamChunk, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if err != nil {
			yield(ai.StreamChunk{}, err)
		}
	})
}

func TestNew_NilProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil provider")
	}
}

func TestNew_SeedsSystemPrompt(t *testing.T) {
	ctx := context.Background()
	c, err := New(&fakeProvider{}, WithSystemPrompt("be brief"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	content, ok, err := c.SystemPrompt(ctx)
	if err != nil {
		t.Fatalf("SystemPrompt returned error: %v", err)
	}
	if !ok || content != "be brief" {
		t.Errorf("expected seeded system prompt, got %q ok=%v", content, ok)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 || messages[0].Role != ai.RoleSystem {
		t.Errorf("expected system message at index 0, got %+v", messages)
	}
}

func TestChat_CommitsBothMessages(t *testing.T) {
	ctx := context.Background()
	var sentRequest ai.ChatRequest
	provider := &fakeProvider{
		completeChat: func(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			sentRequest = request
			return &ai.ChatResponse{Content: "Hi there!", FinishReason: "stop"}, nil
		},
	}

	c, err := New(provider,
		WithSystemPrompt("be helpful"),
		WithDefaultModel("test-model"),
		WithTemperature(0.3),
		WithMaxTokens(100),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	response, err := c.Chat(ctx, "Hello")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if response.Content != "Hi there!" {
		t.Errorf("unexpected response content %q", response.Content)
	}

	// The request carries the configured defaults and the full history
	// including the just-appended user message.
	if sentRequest.Model != "test-model" || sentRequest.Temperature != 0.3 || sentRequest.MaxTokens != 100 {
		t.Errorf("unexpected request settings: %+v", sentRequest)
	}
	if len(sentRequest.Messages) != 2 || sentRequest.Messages[1].Content != "Hello" {
		t.Errorf("unexpected request messages: %+v", sentRequest.Messages)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 3 {
		t.Fatalf("expected system + user + assistant, got %d messages", len(messages))
	}
	if messages[2].Role != ai.RoleAssistant || messages[2].Content != "Hi there!" {
		t.Errorf("unexpected assistant message: %+v", messages[2])
	}
}

func TestChat_FailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	providerErr := errors.New("backend down")
	c, _ := New(&fakeProvider{
		completeChat: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, providerErr
		},
	})

	_, err := c.Chat(ctx, "Hello")
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 || messages[0].Role != ai.RoleUser {
		t.Errorf("expected only the user message committed, got %+v", messages)
	}
}

func TestChat_EmptyContentNotCommitted(t *testing.T) {
	ctx := context.Background()
	c, _ := New(&fakeProvider{
		completeChat: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: "", FinishReason: "stop"}, nil
		},
	})

	if _, err := c.Chat(ctx, "Hello"); err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 {
		t.Errorf("expected no assistant message for empty content, got %+v", messages)
	}
}

func TestStreamChat_CommitsAccumulatedContent(t *testing.T) {
	ctx := context.Background()
	c, _ := New(&fakeProvider{
		streamChat: func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
			return scriptedStream([]ai.StreamChunk{
				{Role: ai.RoleAssistant, ContentDelta: "He"},
				{ContentDelta: "llo"},
				{FinishReason: "stop", Usage: &ai.Usage{TotalTokens: 5}},
			}, nil), nil
		},
	})

	var deltas []string
	response, err := c.StreamChat(ctx, "Hi", func(chunk ai.StreamChunk) error {
		if chunk.ContentDelta != "" {
			deltas = append(deltas, chunk.ContentDelta)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	if response.Content != "Hello" {
		t.Errorf("expected accumulated content 'Hello', got %q", response.Content)
	}
	if len(deltas) != 2 || deltas[0] != "He" || deltas[1] != "llo" {
		t.Errorf("expected deltas in arrival order, got %v", deltas)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 2 || messages[1].Content != "Hello" {
		t.Errorf("expected single assistant message 'Hello', got %+v", messages)
	}
}

func TestStreamChat_MidStreamErrorLeavesOnlyUserMessage(t *testing.T) {
	ctx := context.Background()
	streamErr := errors.New("connection reset")
	c, _ := New(&fakeProvider{
		streamChat: func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
			return scriptedStream([]ai.StreamChunk{{ContentDelta: "partial"}}, streamErr), nil
		},
	})

	response, err := c.StreamChat(ctx, "Hi", nil)
	if !errors.Is(err, streamErr) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if response.Content != "partial" {
		t.Errorf("expected partial content reported, got %q", response.Content)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 || messages[0].Role != ai.RoleUser {
		t.Errorf("expected no assistant message after mid-stream failure, got %+v", messages)
	}
}

func TestStreamChat_ZeroChunksNoAssistantMessage(t *testing.T) {
	ctx := context.Background()
	c, _ := New(&fakeProvider{
		streamChat: func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
			return scriptedStream(nil, nil), nil
		},
	})

	if _, err := c.StreamChat(ctx, "Hi", nil); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 {
		t.Errorf("expected zero-chunk stream to commit nothing, got %+v", messages)
	}
}

func TestStreamChat_EmptyDeltasNoAssistantMessage(t *testing.T) {
	ctx := context.Background()
	c, _ := New(&fakeProvider{
		streamChat: func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
			// Chunks arrive but none carries content: role on the first,
			// finish reason and usage on the last.
			return scriptedStream([]ai.StreamChunk{
				{Role: ai.RoleAssistant},
				{FinishReason: "stop", Usage: &ai.Usage{TotalTokens: 3}},
			}, nil), nil
		},
	})

	response, err := c.StreamChat(ctx, "Hi", nil)
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	if response.Content != "" {
		t.Errorf("expected empty accumulated content, got %q", response.Content)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 || messages[0].Role != ai.RoleUser {
		t.Errorf("expected only the user message committed, got %+v", messages)
	}
}

func TestStreamChat_CallbackAbortStopsTurn(t *testing.T) {
	ctx := context.Background()
	abortErr := errors.New("user aborted")
	c, _ := New(&fakeProvider{
		streamChat: func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
			return scriptedStream([]ai.StreamChunk{
				{ContentDelta: "one"},
				{ContentDelta: "two"},
				{ContentDelta: "three"},
			}, nil), nil
		},
	})

	calls := 0
	_, err := c.StreamChat(ctx, "Hi", func(ai.StreamChunk) error {
		calls++
		if calls == 2 {
			return abortErr
		}
		return nil
	})
	if !errors.Is(err, abortErr) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected callback stopped after abort, got %d calls", calls)
	}

	messages, _ := c.History(ctx)
	if len(messages) != 1 {
		t.Errorf("expected aborted turn to commit no assistant message, got %+v", messages)
	}
}

func TestModels_AdvisoryOnFailure(t *testing.T) {
	c, _ := New(&fakeProvider{
		listModels: func(context.Context) ([]ai.ModelInfo, error) {
			return nil, errors.New("backend down")
		},
	})

	models := c.Models(context.Background())
	if models == nil || len(models) != 0 {
		t.Errorf("expected empty non-nil list on failure, got %v", models)
	}
}

func TestModels_Success(t *testing.T) {
	c, _ := New(&fakeProvider{
		listModels: func(context.Context) ([]ai.ModelInfo, error) {
			return []ai.ModelInfo{{ID: "m1"}, {ID: "m2"}}, nil
		},
	})

	models := c.Models(context.Background())
	if len(models) != 2 {
		t.Errorf("expected 2 models, got %d", len(models))
	}
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	c, _ := New(&fakeProvider{
		completeChat: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: "reply"}, nil
		},
	}, WithSystemPrompt("sys"))

	c.Chat(ctx, "Hello")

	if err := c.ClearHistory(ctx, true); err != nil {
		t.Fatalf("ClearHistory returned error: %v", err)
	}
	messages, _ := c.History(ctx)
	if len(messages) != 1 || messages[0].Role != ai.RoleSystem {
		t.Errorf("expected system message kept, got %+v", messages)
	}
}
