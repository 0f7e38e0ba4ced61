package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func msgWithHeaders(headers map[string]string) *gmail.Message {
	var hs []*gmail.MessagePartHeader
	for name, value := range headers {
		hs = append(hs, &gmail.MessagePartHeader{Name: name, Value: value})
	}
	return &gmail.Message{
		Id:       "msg1",
		ThreadId: "thread1",
		Payload:  &gmail.MessagePart{Headers: hs},
	}
}

func TestNormalize_HeaderFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		headers     map[string]string
		wantFrom    string
		wantSubject string
	}{
		{
			name:        "from header present",
			headers:     map[string]string{"From": "alice@example.com", "Sender": "bot@example.com"},
			wantFrom:    "alice@example.com",
			wantSubject: "",
		},
		{
			name:     "falls back to sender",
			headers:  map[string]string{"Sender": "bot@example.com"},
			wantFrom: "bot@example.com",
		},
		{
			name:     "falls back to reply-to",
			headers:  map[string]string{"Reply-To": "replies@example.com"},
			wantFrom: "replies@example.com",
		},
		{
			name:        "subject falls back to thread-topic",
			headers:     map[string]string{"Thread-Topic": "Quarterly review"},
			wantSubject: "Quarterly review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(msgWithHeaders(tt.headers))
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantSubject, got.Subject)
		})
	}
}

func TestNormalize_TimeFallsBackToInternalDate(t *testing.T) {
	msg := msgWithHeaders(map[string]string{"From": "a@b.com"})
	msg.InternalDate = 1758804896000

	got := Normalize(msg)
	assert.Equal(t, "1758804896000", got.Time)
}

func TestNormalize_TimePrefersDateHeader(t *testing.T) {
	msg := msgWithHeaders(map[string]string{"Date": "Thu, 25 Sep 2025 12:34:56 +0000"})
	msg.InternalDate = 1758804896000

	got := Normalize(msg)
	assert.Equal(t, "Thu, 25 Sep 2025 12:34:56 +0000", got.Time)
}

func TestNormalize_TruncatesBody(t *testing.T) {
	long := strings.Repeat("x", MaxBodyChars+500)
	msg := msgWithHeaders(nil)
	msg.Payload.MimeType = "text/plain"
	msg.Payload.Body = &gmail.MessagePartBody{
		Data: base64.URLEncoding.EncodeToString([]byte(long)),
	}

	got := Normalize(msg)
	assert.Len(t, got.Body, MaxBodyChars)
}

func TestMessageBody_NestedMultipart(t *testing.T) {
	body := "plain text body"
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{
					Data: base64.URLEncoding.EncodeToString([]byte("<p>html</p>")),
				}},
				{MimeType: "multipart/mixed", Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte(body)),
					}},
				}},
			},
		},
	}

	assert.Equal(t, body, MessageBody(msg))
}

func TestMessageBody_NoPlainPart(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body: &gmail.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte("<p>html only</p>")),
			},
		},
	}
	assert.Empty(t, MessageBody(msg))
}

func TestMessageBody_StandardBase64Fallback(t *testing.T) {
	// Some payloads arrive with standard (non-URL) base64 alphabet.
	body := "body with standard encoding ~~~???"
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: base64.StdEncoding.EncodeToString([]byte(body))},
		},
	}
	assert.Equal(t, body, MessageBody(msg))
}

func TestSnippetText(t *testing.T) {
	t.Run("prefers body", func(t *testing.T) {
		msg := &gmail.Message{
			Snippet: "provider snippet",
			Payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("full body"))},
			},
		}
		assert.Equal(t, "full body", SnippetText(msg))
	})

	t.Run("falls back to snippet", func(t *testing.T) {
		msg := &gmail.Message{Snippet: "provider snippet"}
		assert.Equal(t, "provider snippet", SnippetText(msg))
	})

	t.Run("empty when nothing available", func(t *testing.T) {
		assert.Empty(t, SnippetText(&gmail.Message{}))
	})
}
