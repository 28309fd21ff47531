// Package huggingface calls the Hugging Face hosted inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = "mistralai/Mistral-7B-Instruct-v0.2"
	DefaultTimeout = 120 * time.Second
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type inferenceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Options    struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API key is required")
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
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete runs text generation. The inference API has no system role, so
// the system prompt is prepended to the input.
func (c *Client) Complete(ctx context.Context, r llm.Request) (string, error) {
	input := r.Prompt
	if r.System != "" {
		input = r.System + "\n\n" + r.Prompt
	}

	reqBody := inferenceRequest{
		Inputs: input,
		Parameters: parameters{
			MaxNewTokens: r.MaxTokens,
			Temperature:  r.Temperature,
		},
	}
	reqBody.Options.WaitForModel = true

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// Errors come back as {"error": "..."}; generations as [{"generated_text": "..."}].
	parsed := gjson.ParseBytes(respBody)
	if msg := parsed.Get("error"); msg.Exists() {
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, msg.String())
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	text := parsed.Get("0.generated_text")
	if !text.Exists() {
		text = parsed.Get("generated_text")
	}
	if text.String() == "" {
		return "", llm.ErrEmptyResponse
	}
	return text.String(), nil
}
