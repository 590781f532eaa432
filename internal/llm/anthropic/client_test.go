package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"transparency-backend/internal/llm"
)

func TestAnalyzeRequestShape(t *testing.T) {
	var got messagesRequest
	var headers http.Header
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"found_genai_disclosure\":true}"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-ant-test", Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Analyze(context.Background(), llm.AnalyzeRequest{
		Model:  "claude-sonnet-4-5",
		System: "rubric",
		Prompt: "doc",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out != `{"found_genai_disclosure":true}` {
		t.Fatalf("out = %q", out)
	}
	if path != "/v1/messages" {
		t.Fatalf("path = %q", path)
	}
	if headers.Get("x-api-key") != "sk-ant-test" {
		t.Fatalf("x-api-key = %q", headers.Get("x-api-key"))
	}
	if headers.Get("anthropic-version") != "2023-06-01" {
		t.Fatalf("anthropic-version = %q", headers.Get("anthropic-version"))
	}
	if got.MaxTokens != 8192 || got.Temperature != 0.1 {
		t.Fatalf("max_tokens=%d temperature=%v", got.MaxTokens, got.Temperature)
	}
	if got.System != "rubric" || len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestChatRequestShape(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Sure."}]}`))
	}))
	defer server.Close()

	client, _ := NewClient("k", Options{BaseURL: server.URL})
	reply, err := client.Chat(context.Background(), llm.ChatRequest{
		Model:   "claude-haiku-4-5",
		History: []llm.Turn{{Role: llm.RoleUser, Text: "a"}, {Role: llm.RoleAssistant, Text: "b"}},
		Message: "c",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Sure." {
		t.Fatalf("reply = %q", reply)
	}
	if got.MaxTokens != 4096 || got.Temperature != 0.3 {
		t.Fatalf("max_tokens=%d temperature=%v", got.MaxTokens, got.Temperature)
	}
	roles := []string{"user", "assistant", "user"}
	if len(got.Messages) != len(roles) {
		t.Fatalf("messages = %d", len(got.Messages))
	}
	for i, r := range roles {
		if got.Messages[i].Role != r {
			t.Fatalf("messages[%d].role = %q", i, got.Messages[i].Role)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "provider message",
			status:  http.StatusUnauthorized,
			body:    `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantMsg: "invalid x-api-key",
		},
		{
			name:    "generic",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantMsg: "Claude API error: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewClient("k", Options{BaseURL: server.URL})
			_, err := client.Analyze(context.Background(), llm.AnalyzeRequest{Model: "claude-sonnet-4-5"})
			var apiErr *llm.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Fatalf("status = %d", apiErr.StatusCode)
			}
			if err.Error() != tt.wantMsg {
				t.Fatalf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client, _ := NewClient("k", Options{BaseURL: server.URL})
	if _, err := client.Analyze(context.Background(), llm.AnalyzeRequest{Model: "m"}); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
