package ai

/*
	##### PROVIDER INPUT #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

// Message represents a single message in a conversation.
// Within a conversation history at most one message carries RoleSystem,
// and when present it occupies index 0. That invariant is enforced by the
// memory stores, not by this type.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// DefaultTemperature is applied when ChatRequest.Temperature is zero.
const DefaultTemperature = 0.7

// ChatRequest represents a request to send a chat completion.
type ChatRequest struct {
	Model    string    `json:"model"`    // Model name or identifier
	Messages []Message `json:"messages"` // Full conversation, system message first when present

	// Temperature is the sampling temperature. Zero means "use
	// DefaultTemperature"; callers that genuinely want 0 should pass a
	// very small positive value.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the response length. Values <= 0 omit the parameter
	// entirely so the backend applies its own default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// EffectiveTemperature resolves the temperature default.
func (r ChatRequest) EffectiveTemperature() float64 {
	if r.Temperature == 0 {
		return DefaultTemperature
	}
	return r.Temperature
}

// EmbeddingRequest represents a request for vector embeddings.
// Input may hold one or many texts; adapters send a bare string when a
// single input is provided, matching the wire contract.
type EmbeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format,omitempty"` // "float" when empty
	Dimensions     int      `json:"dimensions,omitempty"`      // <= 0 omits the parameter
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token consumption for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion, either
// returned directly by CompleteChat or accumulated from a stream.
type ChatResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// ModelInfo describes one model advertised by a backend.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// EmbeddingData is a single embedding vector with its position in the input batch.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingResponse represents the result of an embeddings request.
type EmbeddingResponse struct {
	Model string          `json:"model"`
	Data  []EmbeddingData `json:"data"`
	Usage *Usage          `json:"usage,omitempty"`
}
