package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	maxErrorBodySize = 4 * 1024
)

// Config holds the HTTP client settings.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:10000/v1.
	BaseURL string
	// APIKey is sent as a bearer token. Local backends accept anything.
	APIKey string
	// Model is the model identifier passed through to the backend.
	Model string
	// Timeout caps the wait for response headers. Defaults to 60 s.
	Timeout time.Duration
}

// HTTPClient talks to an OpenAI-compatible backend. It never retries; a
// failure surfaces as a single chat-turn error.
type HTTPClient struct {
	config Config
	client *http.Client
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the given backend.
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		config: cfg,
		// Response-header timeout instead of a global client timeout:
		// per-request context handles cancellation.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// Wire types for JSON serialization.

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Grammar     string  `json:"grammar,omitempty"`
}

// completionResponse covers both reply shapes the backends produce: a bare
// top-level content field, or a choices array whose entries carry either a
// text field or a chat message.
type completionResponse struct {
	Content string `json:"content"`
	Choices []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractText pulls the single reply text out of a success payload.
func (r completionResponse) extractText() (string, bool) {
	if r.Content != "" {
		return r.Content, true
	}
	if len(r.Choices) == 0 {
		return "", false
	}
	c := r.Choices[0]
	switch {
	case c.Message.Content != "":
		return c.Message.Content, true
	case c.Text != "":
		return c.Text, true
	case c.Content != "":
		return c.Content, true
	}
	return "", false
}

// Complete implements Client via the chat completions endpoint.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	return c.post(ctx, "/chat/completions", chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

// CompleteWithGrammar implements Client via the raw completions endpoint,
// passing the grammar for backends (llama.cpp style) that enforce it.
func (c *HTTPClient) CompleteWithGrammar(ctx context.Context, prompt, grammar string, opts Options) (string, error) {
	return c.post(ctx, "/completions", completionRequest{
		Model:       c.config.Model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Grammar:     grammar,
	})
}

// post executes one request/response cycle and extracts the reply text.
func (c *HTTPClient) post(ctx context.Context, path string, body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", &TransportError{Status: resp.StatusCode, Body: string(errBody)}
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	text, ok := decoded.extractText()
	if !ok {
		return "", ErrMalformedResponse
	}
	return text, nil
}
