// Package cmd implements the command-line interface for mailchat.
//
// This package provides the following commands:
//   - serve: Start the REST API server wrapping the Gmail API
//   - chat: Start the interactive chat client (default command)
//   - version: Display version information
package cmd
