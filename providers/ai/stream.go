package ai

import (
	"iter"
	"strings"
)

// StreamChunk is the normalized delta emitted by every adapter regardless of
// backend wire format. Concatenating the ContentDelta fields of a stream, in
// arrival order, reconstitutes the complete assistant message text.
type StreamChunk struct {
	ID           string      `json:"id,omitempty"`
	Model        string      `json:"model,omitempty"`
	Role         MessageRole `json:"role,omitempty"`          // Usually set on the first chunk only
	ContentDelta string      `json:"content_delta,omitempty"` // Incremental text fragment
	FinishReason string      `json:"finish_reason,omitempty"` // Present on the final chunk of a choice
	Usage        *Usage      `json:"usage,omitempty"`         // Typically carried by the final chunk
}

// ChatStream wraps a lazy, finite, single-pass sequence of normalized chunks.
// It is not restartable: once iterated (fully or partially) it is exhausted.
//
// Callers must consume the stream, either by ranging over Iter() (breaking
// out early is fine) or by calling Collect(). The underlying adapter may hold
// open resources, such as an HTTP response body, that are released only when
// the iterator finishes or is abandoned via a loop break.
type ChatStream struct {
	iterator iter.Seq2[StreamChunk, error]
}

// NewChatStream creates a ChatStream from a raw chunk iterator. The iterator
// yields chunks with a nil error for normal deltas and may yield a non-nil
// error to signal a mid-stream failure, after which it must stop.
func NewChatStream(iterator iter.Seq2[StreamChunk, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewSingleChunkStream wraps a completed response as a one-chunk stream.
// Used as a fallback when a caller wants the streaming surface from a
// synchronous result.
func NewSingleChunkStream(response *ChatResponse) *ChatStream {
	return NewChatStream(func(yield func(StreamChunk, error) bool) {
		yield(StreamChunk{
			ID:           response.ID,
			Model:        response.Model,
			Role:         RoleAssistant,
			ContentDelta: response.Content,
			FinishReason: response.FinishReason,
			Usage:        response.Usage,
		}, nil)
	})
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(chunk.ContentDelta)
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamChunk, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated response.
// A mid-stream error terminates collection and returns the partial
// accumulation alongside the error.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}
	var content strings.Builder

	for chunk, err := range stream.iterator {
		if err != nil {
			accumulated.Content = content.String()
			return accumulated, err
		}
		if chunk.ID != "" {
			accumulated.ID = chunk.ID
		}
		if chunk.Model != "" {
			accumulated.Model = chunk.Model
		}
		content.WriteString(chunk.ContentDelta)
		if chunk.FinishReason != "" {
			accumulated.FinishReason = chunk.FinishReason
		}
		if chunk.Usage != nil {
			accumulated.Usage = chunk.Usage
		}
	}

	accumulated.Content = content.String()
	return accumulated, nil
}
