package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/zhwei/convo/providers/ai"
)

// paramsFromGeneric builds the vendor request. The system message travels in
// the dedicated System field, never in the message list; the remaining
// history maps positionally onto vendor user/assistant messages.
func paramsFromGeneric(request ai.ChatRequest) anthropic.MessageNewParams {
	maxTokens := int64(request.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(request.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(request.EffectiveTemperature()),
	}

	messages := make([]anthropic.MessageParam, 0, len(request.Messages))
	for _, message := range request.Messages {
		switch message.Role {
		case ai.RoleSystem:
			params.System = []anthropic.TextBlockParam{{Text: message.Content}}
		case ai.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(message.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message.Content)))
		}
	}
	params.Messages = messages

	return params
}

// messageToGeneric flattens the vendor response into the normalized schema,
// concatenating text blocks into a single content string.
func messageToGeneric(message *anthropic.Message) *ai.ChatResponse {
	var content strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &ai.ChatResponse{
		ID:           message.ID,
		Model:        string(message.Model),
		Content:      content.String(),
		FinishReason: normalizeStopReason(string(message.StopReason)),
		Usage: &ai.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}
}

// normalizeStopReason maps vendor stop reasons onto the OpenAI-style finish
// reasons used by the normalized schema.
func normalizeStopReason(stopReason string) string {
	switch stopReason {
	case "":
		return ""
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return stopReason
	}
}
