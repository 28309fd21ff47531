// Package ollama runs persona generation against a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

const (
	DefaultEndpoint = "http://localhost:11434/api/generate"
	DefaultModel    = "llama2"
	DefaultTimeout  = 300 * time.Second
)

// Config holds the local model settings.
type Config struct {
	// Endpoint is the full /api/generate URL.
	Endpoint string
	Model    string
	Timeout  time.Duration
}

type Client struct {
	client   *http.Client
	endpoint string
	model    string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

// Complete issues a non-streaming generate call.
func (c *Client) Complete(ctx context.Context, r llm.Request) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: r.Prompt,
		System: r.System,
		Stream: false,
	}
	if r.JSON {
		reqBody.Format = "json"
	}
	if r.MaxTokens > 0 || r.Temperature > 0 {
		reqBody.Options = &options{NumPredict: r.MaxTokens, Temperature: r.Temperature}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}
	if genResp.Response == "" {
		return "", llm.ErrEmptyResponse
	}
	return genResp.Response, nil
}
