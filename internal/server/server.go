package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/mkoepke/mailchat/internal/instrumentation"
)

const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8000"

	defaultReadHeaderTimeout = 10 * time.Second
	// Write timeout must cover a full summary round trip through the
	// completion API.
	defaultWriteTimeout = 90 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// Mailer is the mail-provider surface the handlers delegate to.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) (*gmailapi.Message, error)
	ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmailapi.Message, error)
	ModifyMessageLabels(ctx context.Context, messageID string, add, remove []string) (*gmailapi.Message, error)
	ApplyLabel(ctx context.Context, messageID, label string) (*gmailapi.Message, error)
}

// Summarizer is the completion-API surface used by the summary handler.
type Summarizer interface {
	Enabled() bool
	Model() string
	Summarize(ctx context.Context, snippets []string) (string, error)
}

// Authenticator handles the initiate/confirm credential pair.
type Authenticator interface {
	AuthURL() (string, error)
	Confirm(ctx context.Context, code, state string) error
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string
}

// Server is the mailchat API server. All handlers are stateless
// request/response wrappers around the Mailer and Summarizer; the only
// shared state is the Authenticator, which synchronizes internally.
type Server struct {
	cfg        Config
	mailer     Mailer
	summarizer Summarizer
	auth       Authenticator
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	health     *HealthChecker
	httpServer *http.Server
}

// New creates a Server. A nil logger falls back to slog.Default; a nil
// metrics recorder disables metric recording.
func New(cfg Config, mailer Mailer, summarizer Summarizer, auth Authenticator, logger *slog.Logger, metrics *instrumentation.Metrics) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:        cfg,
		mailer:     mailer,
		summarizer: summarizer,
		auth:       auth,
		logger:     logger,
		metrics:    metrics,
		health:     NewHealthChecker(),
	}
}

// Handler builds the routing table. All API endpoints live under the
// /gmail/ prefix; health probes are registered at the root.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /gmail/send", s.handleSend)
	mux.HandleFunc("GET /gmail/list", s.handleList)
	mux.HandleFunc("GET /gmail/summary", s.handleSummary)
	mux.HandleFunc("POST /gmail/spam", s.handleSpam)
	mux.HandleFunc("POST /gmail/labels", s.handleLabels)
	mux.HandleFunc("GET /gmail/auth/start", s.handleAuthStart)
	mux.HandleFunc("GET /gmail/auth/callback", s.handleAuthCallback)

	s.health.RegisterHealthEndpoints(mux)

	return s.withObservability(mux)
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	s.health.SetReady(true)
	s.logger.Info("starting API server", "addr", s.cfg.Addr)

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
