package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
)

// Session is the client-held record of authentication status.
// Email is only known after a login in this process.
type Session struct {
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// Manager is the single source of truth for "is this client authenticated"
// and the only path authenticated requests go through. Build one per process
// and pass it to every consumer.
type Manager struct {
	baseURL      string
	httpClient   *http.Client
	store        auth.TokenStore
	logger       zerolog.Logger
	onInvalidate func()

	initOnce sync.Once
	initErr  error

	// mu guards session and loadingInitial, and makes each token-store write
	// commit together with the matching session update.
	mu             sync.Mutex
	session        Session
	loadingInitial bool
}

// Option configures a Manager
type Option func(*Manager)

// WithBaseURL sets the backend root, e.g. https://books.example.com
func WithBaseURL(baseURL string) Option {
	return func(m *Manager) {
		m.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithInvalidationHook registers fn to run once each time a 401 invalidates
// the session. It runs outside the manager's lock.
func WithInvalidationHook(fn func()) Option {
	return func(m *Manager) {
		m.onInvalidate = fn
	}
}

// New creates a session manager backed by store
func New(store auth.TokenStore, opts ...Option) *Manager {
	m := &Manager{
		baseURL:        "http://localhost:8080",
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		store:          store,
		logger:         zerolog.Nop(),
		loadingInitial: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize reads the persisted token once. A token found there is trusted
// until the server says otherwise; no request is made. Later calls are no-ops
// and return the first call's error.
func (m *Manager) Initialize() error {
	m.initOnce.Do(func() {
		token, err := m.store.Get()

		m.mu.Lock()
		defer m.mu.Unlock()

		switch {
		case err == nil && token != "":
			m.session = Session{Token: token, Authenticated: true}
			m.logger.Debug().Msg("Restored session from persisted token")
		case err != nil && !errors.Is(err, auth.ErrTokenNotFound):
			m.initErr = fmt.Errorf("failed to read persisted token: %w", err)
		}
		m.loadingInitial = false
	})
	return m.initErr
}

// IsAuthenticated reports the current authentication state
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Authenticated
}

// User returns a copy of the current session
func (m *Manager) User() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// LoadingInitial is true until Initialize has completed
func (m *Manager) LoadingInitial() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadingInitial
}

// BaseURL returns the backend root the manager talks to
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// currentToken reads the persisted token, "" when none is stored
func (m *Manager) currentToken() (string, error) {
	token, err := m.store.Get()
	if errors.Is(err, auth.ErrTokenNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// invalidate drops the session after a 401 for token. The store is cleared
// only while it still holds token, so concurrent failures clear once and a
// stale failure never wipes a token from a newer login. The session is reset
// when it was built on token, when this call cleared the store, or when the
// store no longer holds the session's token.
func (m *Manager) invalidate(token string) {
	m.mu.Lock()
	changed := false
	cleared := false
	orphaned := false

	current, err := m.currentToken()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to read token during invalidation")
	} else {
		if token != "" && current == token {
			if err := m.store.Clear(); err != nil {
				m.logger.Error().Err(err).Msg("Failed to clear persisted token")
			} else {
				current = ""
				cleared = true
				changed = true
			}
		}
		orphaned = current == "" || current != m.session.Token
	}

	if m.session.Authenticated && (m.session.Token == token || cleared || orphaned) {
		m.session = Session{}
		changed = true
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().Msg("Session invalidated by server (401)")
	if m.onInvalidate != nil {
		m.onInvalidate()
	}
}
