package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailchat application
var rootCmd = &cobra.Command{
	Use:   "mailchat",
	Short: "A conversational Gmail agent",
	Long: `mailchat is a conversational agent for Gmail. It can list recent
messages, summarize the inbox through a completion API, and send email
from natural-language requests.

It runs as:
  - A REST API server wrapping the Gmail API (serve)
  - An interactive chat client talking to that server (chat, default)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailchat version %s\n" .Version}}`)

	// If no subcommand is provided, run the chat client by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mailchat version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mailchat version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newVersionCmd())
}
