package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/smartdalle/smartdalle/pkg/config"
)

const (
	// DefaultModel is the chat model used for coaching tips.
	DefaultModel = "gpt-4o-mini"

	openAIChatURL = "https://api.openai.com/v1/chat/completions"

	defaultTimeout = 30 * time.Second

	// PlaceholderAPIKey marks an intentionally unconfigured key. Deployments
	// without an OpenAI account ship this value; the client then degrades to
	// ErrAPIKeyNotConfigured instead of burning a request on a 401.
	PlaceholderAPIKey = "your-openai-api-key"
)

// Config configures the OpenAI chat client.
type Config struct {
	APIKey string `env:"OPENAI_API_KEY" envDefault:"your-openai-api-key"`
	Model  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// Client generates short coaching texts with OpenAI's chat completions API.
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a chat client. It never fails: a missing or placeholder
// API key produces a client whose calls return ErrAPIKeyNotConfigured, so
// AI features degrade gracefully instead of blocking startup.
func NewClient(cfg Config, opts ...Option) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		apiKey: cfg.APIKey,
		model:  model,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a real API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != PlaceholderAPIKey
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// Default returns a process-wide client built from environment configuration.
func Default() *Client {
	defaultOnce.Do(func() {
		var cfg Config
		config.MustLoad(&cfg)
		defaultClient = NewClient(cfg)
	})
	return defaultClient
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a single-turn prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", ErrAPIKeyNotConfigured
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("%w: %s (%s)", ErrRequestFailed, parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrInvalidResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
