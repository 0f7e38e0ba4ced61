package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Per-request deadlines. Summaries wait on a completion round trip, so they
// get a longer budget than plain mailbox calls.
const (
	listTimeout    = 10 * time.Second
	sendTimeout    = 10 * time.Second
	summaryTimeout = 30 * time.Second
)

// Email is a normalized message as returned by the backend list endpoint.
type Email struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	Time     string `json:"time"`
	Body     string `json:"body"`
}

// SummaryResult is the backend summary response. Summary is nil when the
// backend has no completion credential and returned snippets only.
type SummaryResult struct {
	Snippets []string `json:"snippets"`
	Summary  *string  `json:"summary"`
	Warning  string   `json:"warning"`
}

// SendResult is the backend send response.
type SendResult struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id"`
}

type apiError struct {
	Error string `json:"error"`
}

// APIClient talks to the mailchat backend over its REST surface.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the backend at baseURL, e.g.
// "http://127.0.0.1:8000".
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// ListEmails fetches up to limit recent messages.
func (c *APIClient) ListEmails(ctx context.Context, limit int) ([]Email, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var emails []Email
	endpoint := c.baseURL + "/gmail/list?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	if err := c.getJSON(ctx, endpoint, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// SummarizeEmails asks the backend to summarize the latest messages.
func (c *APIClient) SummarizeEmails(ctx context.Context, limit int) (*SummaryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	var result SummaryResult
	endpoint := c.baseURL + "/gmail/summary?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendEmail sends a message through the backend.
func (c *APIClient) SendEmail(ctx context.Context, to, subject, body string) (*SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"to": to, "subject": subject, "body": body})
	if err != nil {
		return nil, fmt.Errorf("encoding send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gmail/send", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result SendResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

// do executes the request and decodes the response, translating backend
// error envelopes into plain errors.
func (c *APIClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
