package anthropic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhwei/convo/providers/ai"
)

// vendorEventStream is a realistic vendor SSE transcript for a two-delta
// completion.
const vendorEventStream = `event: message_start
data: {"type":"message_start","message":{"id":"msg_01","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}

event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}

event: ping
data: {"type":"ping"}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"He"}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"llo"}}

event: content_block_stop
data: {"type":"content_block_stop","index":0}

event: message_delta
data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":2}}

event: message_stop
data: {"type":"message_stop"}

`

func newStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writer.Write([]byte(vendorEventStream))
	}))
}

func TestStreamChat_TranslatesVendorEvents(t *testing.T) {
	server := newStreamServer(t)
	defer server.Close()

	stream, err := newTestProvider(server).StreamChat(context.Background(), ai.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	var chunks []ai.StreamChunk
	for chunk, iterErr := range stream.Iter() {
		if iterErr != nil {
			t.Fatalf("stream yielded error: %v", iterErr)
		}
		chunks = append(chunks, chunk)
	}

	// message_start + two text deltas + message_delta; boundary events and
	// pings carry nothing and are skipped.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %+v", len(chunks), chunks)
	}

	if chunks[0].Role != ai.RoleAssistant || chunks[0].ID != "msg_01" {
		t.Errorf("unexpected opening chunk: %+v", chunks[0])
	}
	if chunks[1].ContentDelta != "He" || chunks[2].ContentDelta != "llo" {
		t.Errorf("unexpected deltas: %q, %q", chunks[1].ContentDelta, chunks[2].ContentDelta)
	}

	final := chunks[3]
	if final.FinishReason != "stop" {
		t.Errorf("expected finish reason 'stop', got %q", final.FinishReason)
	}
	if final.Usage == nil || final.Usage.TotalTokens != 12 {
		t.Errorf("expected 12 total tokens on final chunk, got %+v", final.Usage)
	}
}

func TestStreamChat_CollectReassembles(t *testing.T) {
	server := newStreamServer(t)
	defer server.Close()

	stream, err := newTestProvider(server).StreamChat(context.Background(), ai.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if response.Content != "Hello" {
		t.Errorf("expected content 'Hello', got %q", response.Content)
	}
	if response.ID != "msg_01" {
		t.Errorf("expected id 'msg_01', got %q", response.ID)
	}
	if response.Model != "claude-sonnet-4-5" {
		t.Errorf("expected vendor model carried through, got %q", response.Model)
	}
	if response.FinishReason != "stop" {
		t.Errorf("expected finish reason 'stop', got %q", response.FinishReason)
	}
}
