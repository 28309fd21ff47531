package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.baseURL != DefaultBaseURL || c.model != DefaultModel {
		t.Errorf("unexpected defaults: %s %s", c.baseURL, c.model)
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer gsk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxCompletionTokens int     `json:"max_completion_tokens"`
			Temperature         float64 `json:"temperature"`
			ResponseFormat      struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != DefaultModel {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "describe" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		if req.Temperature != 0.7 || req.MaxCompletionTokens != 1500 {
			t.Errorf("unexpected sampling params %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   DefaultModel,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": `{"interests":"go"}`},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "gsk-test", BaseURL: server.URL + "/"})
	out, err := c.Complete(context.Background(), llm.Request{
		System:      "sys",
		Prompt:      "describe",
		MaxTokens:   1500,
		Temperature: 0.7,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"interests":"go"}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestComplete_APIError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "api error 401") {
		t.Errorf("expected status in error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no retry on 401, got %d calls", calls)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "chatcmpl-2", "object": "chat.completion", "choices": []any{}})
	}))
	defer server.Close()

	c, _ := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
