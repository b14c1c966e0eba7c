package openai

import "github.com/zhwei/convo/providers/ai"

/*
	##### WIRE FORMAT: REQUESTS #####
*/

// chatCompletionRequest is the POST /chat/completions body.
type chatCompletionRequest struct {
	Model       string       `json:"model"`
	Messages    []ai.Message `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Stream      bool         `json:"stream"`
}

func chatCompletionRequestFromGeneric(request ai.ChatRequest, stream bool) chatCompletionRequest {
	body := chatCompletionRequest{
		Model:       request.Model,
		Messages:    request.Messages,
		Temperature: request.EffectiveTemperature(),
		Stream:      stream,
	}
	// max_tokens <= 0 means "omit, let the backend choose"
	if request.MaxTokens > 0 {
		body.MaxTokens = request.MaxTokens
	}
	return body
}

// embeddingRequest is the POST /embeddings body. Input is string or
// []string on the wire, hence the any type.
type embeddingRequest struct {
	Model          string `json:"model"`
	Input          any    `json:"input"`
	EncodingFormat string `json:"encoding_format"`
	Dimensions     int    `json:"dimensions,omitempty"`
}

func embeddingRequestFromGeneric(request ai.EmbeddingRequest) embeddingRequest {
	var input any = request.Input
	if len(request.Input) == 1 {
		input = request.Input[0]
	}

	encodingFormat := request.EncodingFormat
	if encodingFormat == "" {
		encodingFormat = "float"
	}

	body := embeddingRequest{
		Model:          request.Model,
		Input:          input,
		EncodingFormat: encodingFormat,
	}
	if request.Dimensions > 0 {
		body.Dimensions = request.Dimensions
	}
	return body
}

/*
	##### WIRE FORMAT: RESPONSES #####
*/

type modelListResponse struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   *usage                 `json:"usage"`
}

type chatCompletionChoice struct {
	Index        int        `json:"index"`
	Message      ai.Message `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *usage) toGeneric() *ai.Usage {
	if u == nil {
		return nil
	}
	return &ai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func (r chatCompletionResponse) toGeneric() *ai.ChatResponse {
	response := &ai.ChatResponse{
		ID:    r.ID,
		Model: r.Model,
		Usage: r.Usage.toGeneric(),
	}
	if len(r.Choices) > 0 {
		response.Content = r.Choices[0].Message.Content
		response.FinishReason = r.Choices[0].FinishReason
	}
	return response
}

// chatCompletionStreamChunk is one "data:" frame of a streaming response.
type chatCompletionStreamChunk struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
	Usage   *usage        `json:"usage"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

type chunkDelta struct {
	Role    ai.MessageRole `json:"role,omitempty"`
	Content string         `json:"content,omitempty"`
}

type embeddingResponse struct {
	Model string           `json:"model"`
	Data  []embeddingEntry `json:"data"`
	Usage *usage           `json:"usage"`
}

type embeddingEntry struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func (r embeddingResponse) toGeneric() *ai.EmbeddingResponse {
	response := &ai.EmbeddingResponse{
		Model: r.Model,
		Data:  make([]ai.EmbeddingData, 0, len(r.Data)),
		Usage: r.Usage.toGeneric(),
	}
	for _, entry := range r.Data {
		response.Data = append(response.Data, ai.EmbeddingData{Index: entry.Index, Embedding: entry.Embedding})
	}
	return response
}
