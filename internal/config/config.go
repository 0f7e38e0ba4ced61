// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// DefaultOpenAIModel is used when OPENAI_MODEL is not set.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultBackendURL is where the chat client expects the API server.
	DefaultBackendURL = "http://127.0.0.1:8000"
)

// Config holds the environment-derived settings shared by the serve and
// chat commands.
type Config struct {
	// GoogleClientID and GoogleClientSecret identify the OAuth2 application
	// used to obtain Gmail credentials.
	GoogleClientID     string
	GoogleClientSecret string

	// TokenFile is where the exchanged OAuth token is persisted.
	TokenFile string

	// OpenAIAPIKey enables the summary endpoint. When empty the endpoint
	// degrades to returning raw snippets with a warning.
	OpenAIAPIKey string

	// OpenAIModel overrides the completion model used for summaries.
	OpenAIModel string
}

// Load reads configuration from the environment. When envFile is non-empty
// it is loaded into the environment first.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenFile:          os.Getenv("GMAIL_TOKEN_FILE"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = DefaultOpenAIModel
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	return cfg, nil
}

// defaultTokenFile places the token under the user cache directory, falling
// back to the working directory when the cache dir cannot be determined.
func defaultTokenFile() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	return filepath.Join(cacheDir, "mailchat", "token.json")
}
