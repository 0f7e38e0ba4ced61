package chat

import "strings"

// Intent is a recognized category of user request.
type Intent string

const (
	IntentListEmails Intent = "list_emails"
	IntentSummarize  Intent = "summarize"
	IntentSendEmail  Intent = "send_email"
	IntentUnknown    Intent = "unknown"
)

// Classify maps free-form input to an Intent by keyword matching on the
// lowercased text. Rules are checked in order, so "list my emails and
// summarize them" is a list request.
func Classify(input string) Intent {
	p := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.Contains(p, "list") && strings.Contains(p, "email"):
		return IntentListEmails
	case strings.Contains(p, "summarize"):
		return IntentSummarize
	case strings.Contains(p, "send an email to"):
		return IntentSendEmail
	default:
		return IntentUnknown
	}
}
