// Package auth manages the Gmail OAuth2 credential flow: generating
// authorization URLs, exchanging authorization codes, and persisting the
// resulting token so the backend survives restarts without re-authorizing.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ErrTokenNotSet indicates no Gmail credentials have been obtained yet.
var ErrTokenNotSet = errors.New("no Gmail credentials stored; call /gmail/auth/start to authorize")

// stateTTL bounds how long an issued OAuth state parameter stays valid.
const stateTTL = 5 * time.Minute

// Manager holds the OAuth2 configuration and the current token with
// thread-safe access. One Manager serves all handlers of a backend process.
type Manager struct {
	mu     sync.RWMutex
	cfg    *oauth2.Config
	token  *oauth2.Token
	path   string
	states map[string]time.Time
}

// NewManager creates a Manager for the given OAuth2 application, loading a
// previously persisted token from tokenFile when one exists.
func NewManager(clientID, clientSecret, redirectURL, tokenFile string) (*Manager, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	m := &Manager{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{gmail.MailGoogleComScope},
			Endpoint:     google.Endpoint,
		},
		path:   tokenFile,
		states: make(map[string]time.Time),
	}

	if err := m.loadToken(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) loadToken() error {
	if m.path == "" {
		return nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return fmt.Errorf("failed to decode token file %s: %w", m.path, err)
	}
	m.token = token

	return nil
}

// AuthURL returns the provider authorization URL with a fresh random state.
func (m *Manager) AuthURL() (string, error) {
	state, err := m.newState()
	if err != nil {
		return "", err
	}
	return m.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (m *Manager) newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.states[state] = now.Add(stateTTL)
	for s, exp := range m.states {
		if exp.Before(now) {
			delete(m.states, s)
		}
	}

	return state, nil
}

func (m *Manager) consumeState(state string) bool {
	if state == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.states[state]
	if !ok {
		return false
	}
	delete(m.states, state)

	return !time.Now().After(expiry)
}

// Confirm exchanges an authorization code for a token after validating the
// state parameter, and persists the token.
func (m *Manager) Confirm(ctx context.Context, code, state string) error {
	if !m.consumeState(state) {
		return errors.New("invalid or expired state parameter")
	}

	token, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	return m.persist()
}

// HasToken reports whether credentials have been obtained.
func (m *Manager) HasToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != nil
}

// TokenSource returns a refreshing token source for the stored token, or
// ErrTokenNotSet when no credentials exist yet.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil, ErrTokenNotSet
	}

	return m.cfg.TokenSource(ctx, m.token), nil
}

func (m *Manager) persist() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.path == "" || m.token == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(m.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open token file for writing: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(m.token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}
