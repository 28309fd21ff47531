// Package llm defines the completion contract shared by the persona
// generation backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response content")

// Backend selects which model provider generates personas.
type Backend int

const (
	BackendNone Backend = iota
	BackendGemini
	BackendGroq
	BackendLocal
	BackendHuggingFace
	BackendAnthropic
)

var backendNames = map[Backend]string{
	BackendNone:        "none",
	BackendGemini:      "gemini",
	BackendGroq:        "groq",
	BackendLocal:       "local",
	BackendHuggingFace: "huggingface",
	BackendAnthropic:   "anthropic",
}

func (b Backend) String() string {
	if s, ok := backendNames[b]; ok {
		return s
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// ParseBackend maps a configuration value to a Backend. The empty string
// is BackendNone.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BackendNone, nil
	case "gemini":
		return BackendGemini, nil
	case "groq":
		return BackendGroq, nil
	case "local", "ollama":
		return BackendLocal, nil
	case "huggingface", "hf":
		return BackendHuggingFace, nil
	case "anthropic", "claude":
		return BackendAnthropic, nil
	default:
		return BackendNone, fmt.Errorf("unknown llm backend %q", s)
	}
}

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// JSON asks the backend for a JSON object when it supports that mode.
	JSON bool
}

// Completer sends a prompt to a model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
