package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_ListEmails(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/list", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]Email{{ID: "m1", Subject: "Hi"}})
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL)
	emails, err := client.ListEmails(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "m1", emails[0].ID)
}

func TestAPIClient_SummarizeEmails(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/summary", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		summary := "nothing urgent"
		_ = json.NewEncoder(w).Encode(SummaryResult{Snippets: []string{"a"}, Summary: &summary})
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL)
	result, err := client.SummarizeEmails(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "nothing urgent", *result.Summary)
}

func TestAPIClient_SendEmail(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gmail/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob@example.com", body["to"])
		assert.Equal(t, "Hi", body["subject"])

		_ = json.NewEncoder(w).Encode(SendResult{OK: true, MessageID: "sent1"})
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL)
	result, err := client.SendEmail(context.Background(), "bob@example.com", "Hi", "Hi there")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "sent1", result.MessageID)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded"})
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL)
	_, err := client.ListEmails(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", err.Error())
}

func TestAPIClient_NonJSONError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL)
	_, err := client.ListEmails(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestAPIClient_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	client := NewAPIClient(backend.URL)
	_, err := client.ListEmails(context.Background(), 3)
	assert.Error(t, err)
}

func TestAPIClient_TrimsTrailingSlash(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/list", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Email{})
	}))
	defer backend.Close()

	client := NewAPIClient(backend.URL + "/")
	_, err := client.ListEmails(context.Background(), 1)
	assert.NoError(t, err)
}
