// Package generator produces raw audit payloads by prompting an OpenAI
// chat-completions endpoint with a page snapshot and the LIFT rubric.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/liftlens/liftlens/internal/domain"
)

const (
	defaultCompletionsURL = "https://api.openai.com/v1/chat/completions"
	defaultModel          = "gpt-4o"
	temperature           = 0.3
	maxTokens             = 8000
)

// Config configures the OpenAI endpoint and HTTP behavior.
type Config struct {
	CompletionsURL string
	APIKey         string
	Model          string
	HTTPClient     *http.Client
}

// Client implements domain.Generator against the chat-completions API.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.CompletionsURL) == "" {
		cfg.CompletionsURL = defaultCompletionsURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate prompts the model with snap and returns the raw completion text.
func (c *Client) Generate(ctx context.Context, snap *domain.Snapshot) ([]byte, error) {
	apiKey := strings.TrimSpace(c.cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	requestBody, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(snap)},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CompletionsURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential material is sent only as an Authorization header and is
	// never echoed in errors.
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("read completion error body: %w", readErr)
		}
		return nil, fmt.Errorf("completion request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("completion response missing content")
	}
	return []byte(payload.Choices[0].Message.Content), nil
}
