package gmail

import (
	"encoding/base64"
	"strconv"

	gmail "google.golang.org/api/gmail/v1"
)

// MaxBodyChars caps the body carried in list responses.
const MaxBodyChars = 2000

// Message is the fixed-shape record the backend returns for each email.
// It is produced fresh from the raw provider message on every request and
// never cached.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	Time     string `json:"time"`
	Body     string `json:"body"`
}

// Fallback-field priority lists for header values whose presence varies
// between senders. The first non-empty header wins.
var (
	fromFallbacks    = []string{"From", "Sender", "Reply-To"}
	subjectFallbacks = []string{"Subject", "Thread-Topic"}
	timeFallbacks    = []string{"Date", "Delivery-Date"}
)

// Normalize maps a raw provider message to the fixed Message shape, applying
// the fallback-field priority lists and truncating the body.
func Normalize(msg *gmail.Message) Message {
	out := Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     firstHeader(msg, fromFallbacks...),
		To:       HeaderValue(msg, "To"),
		Subject:  firstHeader(msg, subjectFallbacks...),
		Snippet:  msg.Snippet,
		Time:     firstHeader(msg, timeFallbacks...),
		Body:     truncate(MessageBody(msg), MaxBodyChars),
	}

	// Messages fetched without headers still carry the internal receive
	// time as epoch milliseconds.
	if out.Time == "" && msg.InternalDate > 0 {
		out.Time = strconv.FormatInt(msg.InternalDate, 10)
	}

	return out
}

// SnippetText returns the text used for summarization: the full body when
// one can be extracted, else the provider-supplied snippet, else empty.
func SnippetText(msg *gmail.Message) string {
	if body := MessageBody(msg); body != "" {
		return body
	}
	return msg.Snippet
}

// HeaderValue extracts a header value from a message payload.
func HeaderValue(m *gmail.Message, header string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == header {
			return h.Value
		}
	}
	return ""
}

func firstHeader(m *gmail.Message, headers ...string) string {
	for _, h := range headers {
		if v := HeaderValue(m, h); v != "" {
			return v
		}
	}
	return ""
}

// MessageBody extracts the text/plain body of a message, walking nested
// multipart payloads. Returns "" when no plain-text part exists or the
// part cannot be decoded.
func MessageBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}

	var data string
	if msg.Payload.MimeType == "text/plain" && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data = msg.Payload.Body.Data
	} else {
		walkParts(msg.Payload, func(part *gmail.MessagePart) {
			if data == "" && part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				data = part.Body.Data
			}
		})
	}
	if data == "" {
		return ""
	}

	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}

	return string(decoded)
}

// walkParts recursively visits a message part and its subparts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
