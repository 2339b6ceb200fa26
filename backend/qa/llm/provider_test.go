package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/will-hwang/ml-commons/shared/resilience"
)

func fastRetry() ProviderOption {
	return WithRetryConfig(&resilience.RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 1.5,
	})
}

func testRequest() ChatRequest {
	return ChatRequest{
		Model:  "test-model",
		System: "You are a helpful assistant.",
		Messages: []MessageBlock{
			NewTextMessage(RoleUser, "What is OpenSearch?"),
		},
		MaxTokens: 256,
	}
}

func TestOpenAIProvider_Chat(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A search engine."}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", WithURL(server.URL+"/v1"), fastRetry())
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	resp, err := provider.Chat(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	want := &ChatResponse{Text: "A search engine.", Usage: Usage{InputTokens: 12, OutputTokens: 4}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	if captured["model"] != "test-model" {
		t.Errorf("model = %v", captured["model"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	if role := messages[0].(map[string]any)["role"]; role != "system" {
		t.Errorf("first message role = %v, want system", role)
	}
}

func TestOpenAIProvider_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "1", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", WithURL(server.URL), fastRetry())
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	resp, err := provider.Chat(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q, want ok", resp.Text)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAIProvider_DoesNotRetryInvalidRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", WithURL(server.URL), fastRetry())
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	_, err = provider.Chat(context.Background(), testRequest())
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if providerErr.Kind != ProviderErrorKindInvalidRequest || providerErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected provider error: kind=%s status=%d", providerErr.Kind, providerErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestAnthropicProvider_Chat(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "A search engine."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider("sk-ant-test", WithURL(server.URL), fastRetry())
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	req := testRequest()
	req.Messages = append([]MessageBlock{NewTextMessage(RoleSystem, "Answer briefly.")}, req.Messages...)

	resp, err := provider.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	want := &ChatResponse{Text: "A search engine.", Usage: Usage{InputTokens: 20, OutputTokens: 5}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	system, _ := captured["system"].([]any)
	if len(system) != 2 {
		t.Errorf("expected system prompt and system turn in system blocks, got %v", captured["system"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 1 {
		t.Errorf("expected a single user message, got %d", len(messages))
	}
	if captured["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v, want 256", captured["max_tokens"])
	}
}

func TestOllamaProvider_Chat(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model": "test-model", "created_at": "2024-01-01T00:00:00Z",` +
			`"message": {"role": "assistant", "content": "A search engine."},` +
			`"done": true, "prompt_eval_count": 7, "eval_count": 3}` + "\n"))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, fastRetry())
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	resp, err := provider.Chat(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	want := &ChatResponse{Text: "A search engine.", Usage: Usage{InputTokens: 7, OutputTokens: 3}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if captured["stream"] != false {
		t.Errorf("stream = %v, want false", captured["stream"])
	}
}

func TestOllamaProvider_RejectsImageURLs(t *testing.T) {
	provider, err := NewOllamaProvider("http://127.0.0.1:11434")
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	req := testRequest()
	req.Messages = []MessageBlock{{
		Role:    RoleUser,
		Content: []ContentBlock{ImageBlock{Format: "png", URL: "https://xyz.com/a.png"}},
	}}

	if _, err := provider.Chat(context.Background(), req); err == nil {
		t.Fatal("expected an error for an image url")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	openaiProvider, _ := NewOpenAIProvider("sk-test")
	ollamaProvider, _ := NewOllamaProvider("http://127.0.0.1:11434")

	registry := NewRegistry("openai/gpt-4o-mini")
	registry.Register(ollamaProvider)
	registry.Register(openaiProvider)

	tests := []struct {
		modelID      string
		wantProvider string
		wantModel    string
	}{
		{modelID: "", wantProvider: ProviderOpenAI, wantModel: "gpt-4o-mini"},
		{modelID: "ollama/llama3", wantProvider: ProviderOllama, wantModel: "llama3"},
		{modelID: "gpt-4o", wantProvider: ProviderOpenAI, wantModel: "gpt-4o"},
		{modelID: "org/custom-model", wantProvider: ProviderOpenAI, wantModel: "org/custom-model"},
	}

	for _, tt := range tests {
		p, model, err := registry.Resolve(tt.modelID)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.modelID, err)
		}
		if p.Name() != tt.wantProvider || model != tt.wantModel {
			t.Errorf("Resolve(%q) = %s, %s; want %s, %s", tt.modelID, p.Name(), model, tt.wantProvider, tt.wantModel)
		}
	}

	if diff := cmp.Diff([]string{ProviderOllama, ProviderOpenAI}, registry.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	empty := NewRegistry("")
	if _, _, err := empty.Resolve("anything"); err == nil {
		t.Error("expected an error when no provider is registered")
	}
}
