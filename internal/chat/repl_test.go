package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptedREPL(t *testing.T, script string, handler http.HandlerFunc) (*REPL, *bytes.Buffer) {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)

	var out bytes.Buffer
	return NewREPL(NewAPIClient(backend.URL), strings.NewReader(script), &out), &out
}

func TestREPL_ListFlow(t *testing.T) {
	var gotLimit string
	repl, out := newScriptedREPL(t, "list my emails\n/quit\n", func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode([]Email{{Subject: "Standup", From: "alice@example.com"}})
	})

	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, "3", gotLimit)
	assert.Contains(t, out.String(), "Latest Emails")
	assert.Contains(t, out.String(), "Standup")
}

func TestREPL_SummarizeFlow(t *testing.T) {
	repl, out := newScriptedREPL(t, "summarize my inbox\n/quit\n", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		summary := "One invoice due."
		_ = json.NewEncoder(w).Encode(SummaryResult{Summary: &summary})
	})

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "Inbox Summary")
	assert.Contains(t, out.String(), "One invoice due.")
}

func TestREPL_SendFlow(t *testing.T) {
	var sent map[string]string
	repl, out := newScriptedREPL(t, "send an email to bob@example.com saying see you at 5\n/quit\n", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		_ = json.NewEncoder(w).Encode(SendResult{OK: true, MessageID: "m1"})
	})

	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, "bob@example.com", sent["to"])
	assert.Equal(t, "see you at 5", sent["body"])
	assert.Contains(t, out.String(), "Email Sent")
}

func TestREPL_UnknownIntentShowsHelp(t *testing.T) {
	repl, out := newScriptedREPL(t, "what's the weather\n/quit\n", func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for unknown intents")
	})

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "I can:")
}

func TestREPL_BackendErrorIsReported(t *testing.T) {
	repl, out := newScriptedREPL(t, "list my emails\n/quit\n", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token not set"})
	})

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "Failed to fetch emails: token not set")
}

func TestREPL_ThreadCommands(t *testing.T) {
	script := "/new\n/chats\n/switch Chat 1\n/clear\n/quit\n"
	repl, out := newScriptedREPL(t, script, func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, repl.Run(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Started Chat 2")
	assert.Contains(t, s, "* Chat 2")
	assert.Contains(t, s, "  Chat 1")
	assert.Contains(t, s, "Chat cleared")
}

func TestREPL_EOFEndsLoop(t *testing.T) {
	repl, _ := newScriptedREPL(t, "", func(w http.ResponseWriter, r *http.Request) {})
	assert.NoError(t, repl.Run(context.Background()))
}
