package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkoepke/mailchat/internal/auth"
	"github.com/mkoepke/mailchat/internal/config"
	"github.com/mkoepke/mailchat/internal/gmail"
	"github.com/mkoepke/mailchat/internal/instrumentation"
	"github.com/mkoepke/mailchat/internal/llm"
	"github.com/mkoepke/mailchat/internal/server"
)

const shutdownGracePeriod = 10 * time.Second

// defaultRedirectURL derives the OAuth redirect URL from the listen address.
// A bare ":8000" style address is anchored to the loopback interface.
func defaultRedirectURL(httpAddr string) string {
	host := httpAddr
	if strings.HasPrefix(httpAddr, ":") {
		host = "127.0.0.1" + httpAddr
	}
	return "http://" + host + "/gmail/auth/callback"
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		httpAddr         string
		envFile          string
		oauthRedirectURL string
		metricsEnabled   bool
		metricsAddr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Gmail REST API server",
		Long: `Start the REST API server that wraps the Gmail API.

The server exposes send, list, summary, spam, and label endpoints under
/gmail/, plus an OAuth flow for obtaining Gmail credentials at runtime.
Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET; OPENAI_API_KEY is
optional and enables summaries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, httpAddr, envFile, oauthRedirectURL, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Optional .env file to load before reading the environment")
	cmd.Flags().StringVar(&oauthRedirectURL, "oauth-redirect-url", "", "OAuth redirect URL; defaults to http://127.0.0.1<http-addr>/gmail/auth/callback")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(debugMode bool, httpAddr, envFile, oauthRedirectURL string, metricsEnabled bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if oauthRedirectURL == "" {
		oauthRedirectURL = defaultRedirectURL(httpAddr)
	}

	tokenManager, err := auth.NewManager(cfg.GoogleClientID, cfg.GoogleClientSecret, oauthRedirectURL, cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	if tokenManager.HasToken() {
		logger.Info("loaded stored Gmail credentials", "token_file", cfg.TokenFile)
	} else {
		logger.Warn("no Gmail credentials stored yet; authorize via /gmail/auth/start")
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if metricsEnabled && provider.Enabled() {
		metricsServer = server.NewMetricsServer(metricsAddr)
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	summarizer := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if !summarizer.Enabled() {
		logger.Warn("OPENAI_API_KEY is not set; summary endpoint will return snippets only")
	}

	srv := server.New(
		server.Config{Addr: httpAddr},
		gmail.NewClient(tokenManager),
		summarizer,
		tokenManager,
		logger,
		provider.Metrics(),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer stopCancel()

	if err := srv.Shutdown(stopCtx); err != nil {
		logger.Error("API server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}
	return nil
}
