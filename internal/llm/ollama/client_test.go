package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama2" {
			t.Errorf("expected default model llama2, got %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Format != "json" {
			t.Errorf("expected json format, got %q", req.Format)
		}
		if req.System != "sys" || req.Prompt != "summary" {
			t.Errorf("unexpected prompt fields %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"response": "{}", "done": true})
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL})
	out, err := c.Complete(context.Background(), llm.Request{System: "sys", Prompt: "summary", JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{}" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(Config{Endpoint: server.URL, Model: "missing"})
	if _, err := c.Complete(context.Background(), llm.Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	if c.endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %s", c.endpoint)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.client.Timeout)
	}
}
