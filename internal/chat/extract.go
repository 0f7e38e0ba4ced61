package chat

import "strings"

const (
	sendMarker = "send an email to"
	bodyMarker = "saying"

	fallbackRecipient = "unknown@example.com"
	fallbackBody      = "Hello!"
	defaultSubject    = "No subject"

	subjectMaxChars = 30
)

// SendParams are the composition parameters extracted from a send request.
// Fallback is set when the input could not be split on the send marker and
// placeholder values were substituted instead.
type SendParams struct {
	Recipient string
	Subject   string
	Body      string
	Fallback  bool
	Reason    string
}

// ExtractSendParams pulls recipient and body out of phrasing like
// "send an email to bob@example.com saying lunch at noon". The marker match
// is case-insensitive but the extracted text keeps the user's casing. The
// subject is derived from the body's first 30 characters.
func ExtractSendParams(input string) SendParams {
	idx := markerIndex(input, sendMarker)
	if idx < 0 {
		return SendParams{
			Recipient: fallbackRecipient,
			Body:      fallbackBody,
			Subject:   deriveSubject(fallbackBody),
			Fallback:  true,
			Reason:    "no recipient phrase found",
		}
	}

	rest := strings.TrimSpace(input[idx+len(sendMarker):])
	recipient := rest
	body := fallbackBody
	if bodyIdx := markerIndex(rest, bodyMarker); bodyIdx >= 0 {
		recipient = strings.TrimSpace(rest[:bodyIdx])
		body = strings.TrimSpace(rest[bodyIdx+len(bodyMarker):])
		if body == "" {
			body = fallbackBody
		}
	} else {
		recipient = strings.TrimSpace(rest)
	}

	return SendParams{
		Recipient: recipient,
		Subject:   deriveSubject(body),
		Body:      body,
	}
}

// markerIndex finds a marker case-insensitively in the original text.
func markerIndex(s, marker string) int {
	return strings.Index(strings.ToLower(s), marker)
}

// deriveSubject takes the first 30 characters of the body, rune-safe.
func deriveSubject(body string) string {
	runes := []rune(body)
	if len(runes) > subjectMaxChars {
		return string(runes[:subjectMaxChars])
	}
	if body == "" {
		return defaultSubject
	}
	return body
}
