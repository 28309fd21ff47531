// Package gemini generates personas with Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// Complete calls GenerateContent and concatenates the text parts of the
// first candidate.
func (c *Client) Complete(ctx context.Context, r llm.Request) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(r.Temperature)),
	}
	if r.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if r.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(r.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return sb.String(), nil
}
