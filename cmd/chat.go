package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkoepke/mailchat/internal/chat"
	"github.com/mkoepke/mailchat/internal/config"
)

func newChatCmd() *cobra.Command {
	var (
		backendURL string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat client",
		Long: `Start the interactive chat client against a running mailchat server.

Requests are matched by keyword: "list ... emails" fetches recent
messages, "summarize ..." produces an inbox summary, and
"send an email to <recipient> saying <text>" sends mail. Slash commands
(/new, /chats, /switch, /clear, /quit) manage conversation threads.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(backendURL, envFile)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend-url", config.DefaultBackendURL, "Base URL of the mailchat server")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Optional .env file to load before reading the environment")

	return cmd
}

func runChat(backendURL, envFile string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if envFile != "" {
		if _, err := config.Load(envFile); err != nil {
			return err
		}
	}
	if url := os.Getenv("MAILCHAT_BACKEND_URL"); url != "" && backendURL == config.DefaultBackendURL {
		backendURL = url
	}

	repl := chat.NewREPL(chat.NewAPIClient(backendURL), os.Stdin, os.Stdout)
	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
