package chat

import (
	"fmt"
	"strings"
	"time"
)

const displayTimeLayout = "2006-01-02 15:04"

// dateLayouts are tried in order against Date header values. Senders are
// inconsistent about day padding and trailing zone names.
var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// FormatTime renders a message timestamp as "2006-01-02 15:04". The input is
// either an RFC 822 style Date header or an epoch-milliseconds string; other
// values pass through unchanged.
func FormatTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayTimeLayout)
		}
	}
	if ms, ok := parseEpochMillis(raw); ok {
		return time.UnixMilli(ms).Format(displayTimeLayout)
	}
	return raw
}

func parseEpochMillis(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var ms int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		ms = ms*10 + int64(r-'0')
	}
	return ms, true
}

// FormatEmailList renders messages as a numbered markdown list.
func FormatEmailList(emails []Email) string {
	var b strings.Builder
	b.WriteString("📩 **Latest Emails:**\n\n")
	for i, e := range emails {
		subject := e.Subject
		if subject == "" {
			subject = "(No subject)"
		}
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, subject)
		fmt.Fprintf(&b, "- From: %s\n", e.From)
		fmt.Fprintf(&b, "- Time: %s\n", FormatTime(e.Time))
		fmt.Fprintf(&b, "- Body: %s\n\n", e.Body)
	}
	return b.String()
}

// FormatSummary renders the summary reply. When the backend could not
// produce a summary it falls back to the warning and raw snippets.
func FormatSummary(result *SummaryResult) string {
	var b strings.Builder
	b.WriteString("📝 **Inbox Summary:**\n\n")
	if result.Summary != nil {
		b.WriteString(*result.Summary)
		return b.String()
	}
	if result.Warning != "" {
		fmt.Fprintf(&b, "⚠️ %s\n\n", result.Warning)
	}
	for _, snippet := range result.Snippets {
		fmt.Fprintf(&b, "- %s\n", snippet)
	}
	return b.String()
}

// FormatSendConfirmation renders the confirmation shown after a send.
func FormatSendConfirmation(params SendParams, sentAt time.Time) string {
	var b strings.Builder
	b.WriteString("✅ **Email Sent**\n\n")
	fmt.Fprintf(&b, "- To: %s\n", params.Recipient)
	fmt.Fprintf(&b, "- Subject: %s\n", params.Subject)
	fmt.Fprintf(&b, "- Body: %s\n", params.Body)
	fmt.Fprintf(&b, "- Time: %s\n", sentAt.Format(displayTimeLayout))
	return b.String()
}

// FormatFailure renders a one-line error reply, e.g.
// "⚠️ Failed to fetch emails: backend unavailable".
func FormatFailure(action string, err error) string {
	return fmt.Sprintf("⚠️ Failed to %s: %v", action, err)
}

// FormatHelp lists the supported request shapes.
func FormatHelp() string {
	return "⚠️ I can:\n" +
		"- `List my last 3 emails`\n" +
		"- `Summarize my recent emails`\n" +
		"- `Send an email to someone@example.com saying Hi`"
}
