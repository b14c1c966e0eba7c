package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/zhwei/convo/providers/ai"
)

// StreamChat sends a streaming message request through the SDK and returns a
// ChatStream translating vendor events into normalized chunks.
//
// Vendor events that carry neither content, a role, nor a finish reason
// (pings, content block boundaries) are skipped. The message_delta event
// carries the stop reason and closes the sequence with the final chunk.
func (p *Provider) StreamChat(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	stream := p.client.Messages.NewStreaming(ctx, paramsFromGeneric(request))

	iterator := func(yield func(ai.StreamChunk, error) bool) {
		defer stream.Close()

		// Carried across events so every chunk is self-describing and
		// the final chunk can report complete usage.
		var messageID string
		var model string
		var inputTokens int64

		for stream.Next() {
			if ctx.Err() != nil {
				yield(ai.StreamChunk{}, &ai.TransportError{Op: "chat completion", Err: ctx.Err()})
				return
			}

			switch event := stream.Current().AsAny().(type) {
			case anthropic.MessageStartEvent:
				messageID = event.Message.ID
				model = string(event.Message.Model)
				inputTokens = event.Message.Usage.InputTokens
				if !yield(ai.StreamChunk{
					ID:    messageID,
					Model: model,
					Role:  ai.RoleAssistant,
				}, nil) {
					return
				}

			case anthropic.ContentBlockDeltaEvent:
				if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
					continue
				}
				if !yield(ai.StreamChunk{
					ID:           messageID,
					Model:        model,
					ContentDelta: event.Delta.Text,
				}, nil) {
					return
				}

			case anthropic.MessageDeltaEvent:
				outputTokens := event.Usage.OutputTokens
				if !yield(ai.StreamChunk{
					ID:           messageID,
					Model:        model,
					FinishReason: normalizeStopReason(string(event.Delta.StopReason)),
					Usage: &ai.Usage{
						PromptTokens:     int(inputTokens),
						CompletionTokens: int(outputTokens),
						TotalTokens:      int(inputTokens + outputTokens),
					},
				}, nil) {
					return
				}

			default:
				// message_stop, content_block_start/stop, ping:
				// nothing to normalize.
			}
		}

		if err := stream.Err(); err != nil {
			yield(ai.StreamChunk{}, &ai.TransportError{Op: "chat completion", Err: err})
		}
	}

	return ai.NewChatStream(iterator), nil
}
