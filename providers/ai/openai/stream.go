package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"

	"github.com/zhwei/convo/internal/httpx"
	"github.com/zhwei/convo/providers/ai"
)

// StreamChat sends a chat completion request with stream=true and returns a
// ChatStream decoding the SSE response into normalized chunks.
//
// Frame handling follows the OpenAI-compatible contract: blank lines are
// ignored, only "data:" lines are candidates, and the literal [DONE] sentinel
// terminates the sequence normally. A frame whose payload fails to parse is
// skipped after one repair attempt; a single malformed frame never loses the
// remainder of the response.
func (p *Provider) StreamChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	body := chatCompletionRequestFromGeneric(request, true)

	response, err := httpx.DoPostStream(ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, body, "chat completion")
	if err != nil {
		return nil, err
	}

	scanner := httpx.NewSSEScanner(response.Body)

	iterator := func(yield func(ai.StreamChunk, error) bool) {
		defer httpx.CloseWithLog(response.Body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamChunk{}, &ai.TransportError{Op: "chat completion", Err: ctx.Err()})
				return
			}

			payload, scanErr := scanner.Next()
			if scanErr == io.EOF {
				return
			}
			if scanErr != nil {
				yield(ai.StreamChunk{}, &ai.TransportError{Op: "chat completion", Err: scanErr})
				return
			}

			frame, ok := decodeStreamFrame(payload)
			if !ok {
				continue
			}

			chunk, ok := frame.toChunk()
			if !ok {
				continue
			}

			if !yield(chunk, nil) {
				return
			}
		}
	}

	return ai.NewChatStream(iterator), nil
}

// decodeStreamFrame parses one SSE payload. Malformed JSON gets a single
// repair attempt before the frame is dropped; dropping is silent apart from
// a debug log because the rest of the stream is still worth consuming.
func decodeStreamFrame(payload string) (*chatCompletionStreamChunk, bool) {
	var frame chatCompletionStreamChunk
	if err := json.Unmarshal([]byte(payload), &frame); err == nil {
		return &frame, true
	}

	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		slog.Debug("skipping malformed stream frame", "payload", httpx.Truncate(payload, 200))
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &frame); err != nil {
		slog.Debug("skipping malformed stream frame", "payload", httpx.Truncate(payload, 200))
		return nil, false
	}
	return &frame, true
}

// toChunk converts a wire frame to a normalized chunk. Frames carrying
// neither a choice nor usage metadata are dropped.
func (frame *chatCompletionStreamChunk) toChunk() (ai.StreamChunk, bool) {
	chunk := ai.StreamChunk{
		ID:    frame.ID,
		Model: frame.Model,
		Usage: frame.Usage.toGeneric(),
	}

	if len(frame.Choices) == 0 {
		if chunk.Usage == nil {
			return ai.StreamChunk{}, false
		}
		return chunk, true
	}

	choice := frame.Choices[0]
	chunk.Role = choice.Delta.Role
	chunk.ContentDelta = choice.Delta.Content
	chunk.FinishReason = choice.FinishReason
	return chunk, true
}
