package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhwei/convo/providers/ai"
)

type echoResponse struct {
	Message string `json:"message"`
}

func TestDoPostSync_DecodesResponse(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuth = request.Header.Get("Authorization")
		gotContentType = request.Header.Get("Content-Type")
		writer.Write([]byte(`{"message":"hello"}`))
	}))
	defer server.Close()

	resp, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "test-key", map[string]string{"a": "b"}, "test")
	if err != nil {
		t.Fatalf("DoPostSync returned error: %v", err)
	}

	if resp.Message != "hello" {
		t.Errorf("expected message 'hello', got %q", resp.Message)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer authorization, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
}

func TestDoPostSync_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writer.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", nil, "test")

	var statusErr *ai.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *ai.HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", statusErr.StatusCode)
	}
	if string(statusErr.Body) != `{"error":"bad key"}` {
		t.Errorf("expected raw body preserved, got %q", statusErr.Body)
	}
}

func TestDoPostSync_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", nil, "test")

	var decodeErr *ai.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *ai.DecodeError, got %v", err)
	}
}

func TestDoPostSync_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing listens anymore

	_, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "", nil, "chat completion")

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *ai.TransportError, got %v", err)
	}
	if transportErr.Op != "chat completion" {
		t.Errorf("expected op propagated, got %q", transportErr.Op)
	}
}

func TestDoGetSync_DecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", request.Method)
		}
		writer.Write([]byte(`{"message":"models"}`))
	}))
	defer server.Close()

	resp, err := DoGetSync[echoResponse](context.Background(), server.Client(), server.URL, "key", "list models")
	if err != nil {
		t.Fatalf("DoGetSync returned error: %v", err)
	}
	if resp.Message != "models" {
		t.Errorf("expected message 'models', got %q", resp.Message)
	}
}

func TestDoPostStream_LeavesBodyOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected SSE accept header, got %q", request.Header.Get("Accept"))
		}
		writer.Header().Set("Content-Type", "text/event-stream")
		writer.Write([]byte("data: {\"a\":1}\n\ndata: [DONE]\n\n"))
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, "key", nil, "test")
	if err != nil {
		t.Fatalf("DoPostStream returned error: %v", err)
	}
	defer response.Body.Close()

	scanner := NewSSEScanner(response.Body)
	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if payload != `{"a":1}` {
		t.Errorf("unexpected payload %q", payload)
	}
}

func TestDoPostStream_NonOKStatusClosesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		writer.Write([]byte("slow down"))
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "", nil, "test")

	var statusErr *ai.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *ai.HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", statusErr.StatusCode)
	}
}
