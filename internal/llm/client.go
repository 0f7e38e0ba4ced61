// Package llm provides a minimal OpenAI chat-completions client used to
// summarize recent emails.
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
	defaultModel   = "gpt-3.5-turbo"
	defaultBaseURL = "https://api.openai.com/v1"

	// Fixed completion parameters: bounded output, low randomness.
	summaryMaxTokens   = 400
	summaryTemperature = 0.25

	systemPrompt = "Summarize emails concisely and list action items."
	promptHeader = "You are an assistant who summarizes a user's recent emails. " +
		"Summarize the main topics briefly and list any clear action items.\n\n"
)

// Client calls the chat-completions API. A zero API key means summarization
// is not configured; callers check Enabled before use.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a completion client. An empty model selects the default.
func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}

	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Enabled reports whether a summarization credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Model returns the completion model in use.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize sends the fixed-template prompt enumerating each snippet and
// returns the generated summary. When the response cannot be parsed into
// the expected shape, the raw response body is returned as the summary
// rather than failing the request.
func (c *Client) Summarize(ctx context.Context, snippets []string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("no API key configured")
	}

	var prompt strings.Builder
	prompt.WriteString(promptHeader)
	for i, s := range snippets {
		fmt.Fprintf(&prompt, "Email %d:\n%s\n\n", i+1, s)
	}

	reqBody := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned %s: %s", res.Status, strings.TrimSpace(string(raw)))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		// The API answered with something we don't recognize; pass
		// it through instead of dropping the response.
		return strings.TrimSpace(string(raw)), nil
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
