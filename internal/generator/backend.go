package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/profiler/internal/config"
	"github.com/MikeSquared-Agency/profiler/internal/llm"
	"github.com/MikeSquared-Agency/profiler/internal/llm/anthropic"
	"github.com/MikeSquared-Agency/profiler/internal/llm/gemini"
	"github.com/MikeSquared-Agency/profiler/internal/llm/groq"
	"github.com/MikeSquared-Agency/profiler/internal/llm/huggingface"
	"github.com/MikeSquared-Agency/profiler/internal/llm/ollama"
)

// NewCompleter builds the client for the selected backend.
func NewCompleter(ctx context.Context, backend llm.Backend, cfg config.LLMConfig) (llm.Completer, error) {
	switch backend {
	case llm.BackendNone:
		return nil, ErrNoBackend
	case llm.BackendGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.BackendGroq:
		c, err := groq.NewClient(groq.Config{APIKey: cfg.GroqAPIKey, Model: cfg.GroqModel})
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.BackendLocal:
		return ollama.NewClient(ollama.Config{Endpoint: cfg.LocalEndpoint, Model: cfg.LocalModel}), nil
	case llm.BackendHuggingFace:
		c, err := huggingface.NewClient(huggingface.Config{APIKey: cfg.HuggingFaceAPIKey, Model: cfg.HuggingFaceModel})
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.BackendAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("anthropic: API key is required")
		}
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unsupported backend %s", backend)
	}
}

// NewFromConfig wires a Generator from loaded configuration. An unknown or
// unusable backend surfaces as a GenerationError.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Generator, error) {
	if cfg.BackendError != nil {
		return nil, &GenerationError{Backend: llm.BackendNone, Err: cfg.BackendError}
	}
	c, err := NewCompleter(ctx, cfg.Backend, cfg.LLM)
	if err != nil {
		return nil, &GenerationError{Backend: cfg.Backend, Err: err}
	}
	return New(c, cfg.Backend, logger), nil
}
