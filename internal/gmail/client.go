package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// gmailUserID addresses the authenticated mailbox in every API call.
const gmailUserID = "me"

// maxPageSize is the largest page the messages.list API accepts.
const maxPageSize = 100

// tokenSourcer supplies OAuth2 credentials for API calls. The credential
// flow itself lives in the auth package.
type tokenSourcer interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// Client wraps the Gmail Users service for the operations the backend
// exposes: sending mail, listing messages, and label mutation.
//
// The underlying service is constructed per call from the current token so
// that credentials obtained after server start are picked up immediately.
type Client struct {
	auth tokenSourcer
}

// NewClient creates a Gmail client backed by the given credential source.
func NewClient(auth tokenSourcer) *Client {
	return &Client{auth: auth}
}

func (c *Client) service(ctx context.Context) (*gmail.UsersService, error) {
	ts, err := c.auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return svc.Users, nil
}

// SendEmail sends a plain-text email and returns the provider's result.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) (*gmail.Message, error) {
	if to == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	// Build the message in RFC 2822 format.
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(to)
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(subject))
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(b.String())),
	}

	sent, err := svc.Messages.Send(gmailUserID, msg).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return sent, nil
}

// ListMessages returns up to maxResults full messages matching the query,
// newest first. The list call only yields IDs, so each message is fetched
// individually to get headers and body.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	pageToken := ""
	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		req := svc.Messages.List(gmailUserID).MaxResults(pageSize)
		if query != "" {
			req = req.Q(query)
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	messages := make([]*gmail.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := svc.Messages.Get(gmailUserID, id).Format("full").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", id, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// ModifyMessageLabels adds and removes label IDs on a message.
func (c *Client) ModifyMessageLabels(ctx context.Context, messageID string, add, remove []string) (*gmail.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	res, err := svc.Messages.Modify(gmailUserID, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}

	return res, nil
}

// ListLabels returns all labels defined in the mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	res, err := svc.Labels.List(gmailUserID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	return res.Labels, nil
}

// CreateLabel creates a user label with the given display name.
func (c *Client) CreateLabel(ctx context.Context, name string) (*gmail.Label, error) {
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	label, err := svc.Labels.Create(gmailUserID, &gmail.Label{Name: name}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}

	return label, nil
}

// ApplyLabel attaches the named label to a message, creating the label first
// when the mailbox does not have it yet.
func (c *Client) ApplyLabel(ctx context.Context, messageID, name string) (*gmail.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}

	labels, err := c.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	labelID := ""
	for _, l := range labels {
		if l.Name == name {
			labelID = l.Id
			break
		}
	}
	if labelID == "" {
		created, err := c.CreateLabel(ctx, name)
		if err != nil {
			return nil, err
		}
		labelID = created.Id
	}

	return c.ModifyMessageLabels(ctx, messageID, []string{labelID}, nil)
}

// encodeRFC2047 encodes a header value per RFC 2047 when it contains
// non-ASCII characters.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
