package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkoepke/mailchat/internal/gmail"
)

const (
	defaultListLimit    = int64(10)
	defaultSummaryLimit = int64(5)

	// spamLabelID is the system label Gmail uses for spam.
	spamLabelID = "SPAM"
)

// Spam actions accepted by the spam endpoint. Both unspam spellings appear
// in the wild, so both are kept.
const (
	actionMarkSpam   = "mark_spam"
	actionUnspam     = "unspam"
	actionUnmarkSpam = "unmark_spam"
)

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	OK        bool     `json:"ok"`
	MessageID string   `json:"message_id,omitempty"`
	ThreadID  string   `json:"thread_id,omitempty"`
	LabelIDs  []string `json:"label_ids,omitempty"`
}

// handleSend validates the request, delegates to the mail provider once,
// and normalizes the result. message_id is present exactly when the
// provider returned an id.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.To) == "" {
		fields["to"] = "this field is required"
	}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "this field is required"
	}
	if strings.TrimSpace(req.Body) == "" {
		fields["body"] = "this field is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	ctx := r.Context()
	start := time.Now()
	sent, err := s.mailer.SendEmail(ctx, req.To, req.Subject, req.Body)
	s.metrics.RecordGmailOperation(ctx, "messages.send", err, time.Since(start))
	if err != nil {
		s.logger.Error("send failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := sendResponse{OK: true}
	if sent != nil {
		resp.MessageID = sent.Id
		resp.ThreadID = sent.ThreadId
		resp.LabelIDs = sent.LabelIds
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleList returns the most recent messages matching the optional query,
// normalized to the fixed shape with bodies truncated.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseLimit(r.URL.Query().Get("limit"), defaultListLimit)

	ctx := r.Context()
	start := time.Now()
	msgs, err := s.mailer.ListMessages(ctx, query, limit)
	s.metrics.RecordGmailOperation(ctx, "messages.list", err, time.Since(start))
	if err != nil {
		s.logger.Error("list failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	simplified := make([]gmail.Message, 0, len(msgs))
	for _, m := range msgs {
		simplified = append(simplified, gmail.Normalize(m))
	}
	writeJSON(w, http.StatusOK, simplified)
}

type summaryResponse struct {
	Snippets []string `json:"snippets"`
	Summary  *string  `json:"summary"`
	Warning  string   `json:"warning,omitempty"`
}

// handleSummary lists recent messages and asks the completion API to
// summarize their snippets. Without a configured credential it degrades to
// returning the snippets with a warning instead of failing.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultSummaryLimit)

	ctx := r.Context()
	start := time.Now()
	msgs, err := s.mailer.ListMessages(ctx, "", limit)
	s.metrics.RecordGmailOperation(ctx, "messages.list", err, time.Since(start))
	if err != nil {
		s.logger.Error("summary list failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snippets := make([]string, 0, len(msgs))
	for _, m := range msgs {
		snippets = append(snippets, gmail.SnippetText(m))
	}

	if !s.summarizer.Enabled() {
		writeJSON(w, http.StatusOK, summaryResponse{
			Snippets: snippets,
			Summary:  nil,
			Warning:  "OPENAI_API_KEY is not set",
		})
		return
	}

	summary, err := s.summarizer.Summarize(ctx, snippets)
	s.metrics.RecordLLMRequest(ctx, s.summarizer.Model(), err)
	if err != nil {
		s.logger.Error("summarize failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Snippets: snippets, Summary: &summary})
}

type spamRequest struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"`
}

type labelResult struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	LabelIDs []string `json:"labelIds"`
}

type mutationResponse struct {
	OK     bool        `json:"ok"`
	Result labelResult `json:"result"`
}

// handleSpam adds or removes the SPAM label. An unknown action is rejected
// before any provider call is made.
func (s *Server) handleSpam(w http.ResponseWriter, r *http.Request) {
	var req spamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MessageID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "message_id and action required")
		return
	}

	var add, remove []string
	switch req.Action {
	case actionMarkSpam:
		add = []string{spamLabelID}
	case actionUnspam, actionUnmarkSpam:
		remove = []string{spamLabelID}
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	ctx := r.Context()
	start := time.Now()
	res, err := s.mailer.ModifyMessageLabels(ctx, req.MessageID, add, remove)
	s.metrics.RecordGmailOperation(ctx, "messages.modify", err, time.Since(start))
	if err != nil {
		s.logger.Error("spam action failed", "action", req.Action, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{OK: true, Result: labelResult{
		ID:       res.Id,
		ThreadID: res.ThreadId,
		LabelIDs: res.LabelIds,
	}})
}

type labelRequest struct {
	MessageID string `json:"message_id"`
	Label     string `json:"label"`
}

// handleLabels attaches a named label to a message, creating the label in
// the mailbox first when it doesn't exist.
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MessageID == "" || req.Label == "" {
		writeError(w, http.StatusBadRequest, "message_id and label required")
		return
	}

	ctx := r.Context()
	start := time.Now()
	res, err := s.mailer.ApplyLabel(ctx, req.MessageID, req.Label)
	s.metrics.RecordGmailOperation(ctx, "labels.apply", err, time.Since(start))
	if err != nil {
		s.logger.Error("label apply failed", "label", req.Label, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{OK: true, Result: labelResult{
		ID:       res.Id,
		ThreadID: res.ThreadId,
		LabelIDs: res.LabelIds,
	}})
}

type authStartResponse struct {
	Status  string `json:"status"`
	AuthURL string `json:"auth_url"`
}

type authConfirmResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleAuthStart begins the credential flow by handing the caller the
// provider authorization URL.
func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	url, err := s.auth.AuthURL()
	if err != nil {
		s.logger.Error("auth start failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, authStartResponse{Status: "ok", AuthURL: url})
}

// handleAuthCallback confirms the flow by exchanging the authorization code.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	if err := s.auth.Confirm(r.Context(), code, state); err != nil {
		s.logger.Error("auth confirm failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, authConfirmResponse{Status: "ok", Message: "credentials obtained and stored"})
}

// parseLimit parses a limit query parameter, falling back to the default on
// anything that is not a positive integer.
func parseLimit(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
