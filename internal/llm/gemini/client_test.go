package gemini

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
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"interests":`}, {"text": `"go"}`}},
				},
			}},
		})
	}))
	defer server.Close()

	c, err := NewClient(context.Background(), Config{APIKey: "test-key", Model: "test-model", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := c.Complete(context.Background(), llm.Request{System: "sys", Prompt: "hi", MaxTokens: 100, Temperature: 0.7, JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"interests":"go"}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestComplete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Complete(context.Background(), llm.Request{Prompt: "hi"}); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
