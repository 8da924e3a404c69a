package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify headers
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.MaxTokens != anthropicMaxTokens {
			t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, anthropicMaxTokens)
		}

		resp := anthropicResponse{
			Content: []anthropicBlock{
				{Type: "text", Text: "{\"a\":"},
				{Type: "tool_use"},
				{Type: "text", Text: "1}"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a, err := NewAnthropic(Options{APIKey: "test-key", Model: "claude-sonnet-4-20250514", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropic error: %v", err)
	}

	got, err := a.Complete(context.Background(), "test")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("Content = %q, want text blocks joined", got)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	a := &Anthropic{
		apiKey:    "bad-key",
		model:     "claude-sonnet-4-20250514",
		baseURL:   server.URL,
		maxTokens: 10,
		client:    server.Client(),
	}

	_, err := a.Complete(context.Background(), "test")
	if err == nil {
		t.Fatal("Expected auth error")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
	var me *ModelError
	if !errors.As(err, &me) {
		t.Errorf("auth failure should still be a *ModelError, got %T", err)
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{}})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", baseURL: server.URL, maxTokens: 10, client: server.Client()}

	_, err := a.Complete(context.Background(), "test")
	if !errors.Is(err, errEmptyContent) {
		t.Errorf("expected empty content error, got %v", err)
	}
}
