package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Message counts requested per intent.
const (
	listIntentLimit    = 3
	summaryIntentLimit = 5
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"})
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"})
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// REPL is the interactive chat loop. It classifies each input line, calls
// the backend, and prints markdown replies. Lines starting with "/" are
// local session commands and never reach the backend.
type REPL struct {
	client  *APIClient
	session *Session
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a REPL reading from in and writing to out.
func NewREPL(client *APIClient, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		client:  client,
		session: NewSession(),
		in:      in,
		out:     out,
	}
}

// Run reads input lines until EOF, /quit, or context cancellation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, titleStyle.Render("📧 Gmail Conversational Agent"))
	fmt.Fprintln(r.out, noticeStyle.Render("Type a request, or /help for commands."))
	fmt.Fprintln(r.out)
	r.printAssistant(r.session.Messages()[0].Content)

	scanner := bufio.NewScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.out, promptStyle.Render(r.session.Current()+" > ")+" ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(line); quit {
				return nil
			}
			continue
		}

		r.session.Append(RoleUser, line)
		reply := r.respond(ctx, line)
		r.session.Append(RoleAssistant, reply)
		r.printAssistant(reply)
	}
	return scanner.Err()
}

// respond routes one input line to the matching backend call and returns
// the markdown reply.
func (r *REPL) respond(ctx context.Context, input string) string {
	switch Classify(input) {
	case IntentListEmails:
		emails, err := r.client.ListEmails(ctx, listIntentLimit)
		if err != nil {
			return FormatFailure("fetch emails", err)
		}
		return FormatEmailList(emails)

	case IntentSummarize:
		result, err := r.client.SummarizeEmails(ctx, summaryIntentLimit)
		if err != nil {
			return FormatFailure("summarize emails", err)
		}
		return FormatSummary(result)

	case IntentSendEmail:
		params := ExtractSendParams(input)
		if params.Fallback {
			fmt.Fprintln(r.out, noticeStyle.Render("Could not parse recipient, using placeholders ("+params.Reason+")."))
		}
		if _, err := r.client.SendEmail(ctx, params.Recipient, params.Subject, params.Body); err != nil {
			return FormatFailure("send email", err)
		}
		return FormatSendConfirmation(params, time.Now())

	default:
		return FormatHelp()
	}
}

// handleCommand executes a slash command and reports whether to quit.
func (r *REPL) handleCommand(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		fmt.Fprintln(r.out, noticeStyle.Render("Bye."))
		return true

	case "/new":
		name := r.session.NewThread()
		fmt.Fprintln(r.out, noticeStyle.Render("Started "+name+"."))
		r.printAssistant(r.session.Messages()[0].Content)

	case "/chats":
		for _, name := range r.session.Threads() {
			marker := "  "
			if name == r.session.Current() {
				marker = "* "
			}
			fmt.Fprintln(r.out, noticeStyle.Render(marker+name))
		}

	case "/switch":
		if arg == "" {
			fmt.Fprintln(r.out, errorStyle.Render("usage: /switch <chat name>"))
			break
		}
		if !r.session.Switch(arg) {
			fmt.Fprintln(r.out, errorStyle.Render("no such chat: "+arg))
			break
		}
		r.replay()

	case "/clear":
		r.session.Clear()
		r.printAssistant(r.session.Messages()[0].Content)

	case "/help":
		fmt.Fprintln(r.out, noticeStyle.Render("commands: /new /chats /switch <name> /clear /quit"))
		fmt.Fprintln(r.out, assistantStyle.Render(FormatHelp()))

	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command: "+cmd))
	}
	return false
}

// replay reprints the active thread after a switch.
func (r *REPL) replay() {
	for _, msg := range r.session.Messages() {
		if msg.Role == RoleUser {
			fmt.Fprintln(r.out, promptStyle.Render("You:")+" "+msg.Content)
			continue
		}
		r.printAssistant(msg.Content)
	}
}

func (r *REPL) printAssistant(content string) {
	fmt.Fprintln(r.out, assistantStyle.Render(content))
	fmt.Fprintln(r.out)
}
