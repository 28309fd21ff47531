// Package groq talks to Groq's OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultModel      = "llama-3.1-8b-instant"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 2
)

// Config holds the Groq client settings.
type Config struct {
	// APIKey is required.
	APIKey string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Model defaults to DefaultModel.
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	completions openai.ChatCompletionService
	baseURL     string
	model       string
}

// NewClient creates a Groq client.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("groq: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL+"/"),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	)

	return &Client{
		completions: client.Chat.Completions,
		baseURL:     baseURL,
		model:       cfg.Model,
	}, nil
}

// Complete sends a system + user message pair to /chat/completions.
func (c *Client) Complete(ctx context.Context, r llm.Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if r.System != "" {
		messages = append(messages, openai.SystemMessage(r.System))
	}
	messages = append(messages, openai.UserMessage(r.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if r.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(r.MaxTokens))
	}
	if r.Temperature != 0 {
		params.Temperature = openai.Float(r.Temperature)
	}
	if r.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api error %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("api call: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}
