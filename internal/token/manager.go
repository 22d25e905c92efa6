// Package token owns the bearer/refresh token pair for a SocialFlow session.
//
// The manager is the only component allowed to mutate the pair. It persists
// every change through a Persistence implementation and serializes refresh
// attempts: concurrent callers of Refresh share a single in-flight exchange
// and all observe the same outcome.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/socialflow/socialflow/internal/api"
)

// refreshPath is the token exchange endpoint. The refresh call is dispatched
// directly by the manager (not through the gateway) so the gateway's
// retry-on-401 cycle can depend on the manager without a cycle.
const refreshPath = "/api/v1/auth/refresh"

// Pair is the credential bundle for authenticated API calls.
type Pair struct {
	// AccessToken is the short-lived bearer token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived token exchanged for new pairs.
	RefreshToken string `json:"refresh_token"`

	// TokenType is the authorization scheme, normally "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds at issue time.
	ExpiresIn int `json:"expires_in"`

	// ObtainedAt records when this pair was issued, for expiry estimates.
	ObtainedAt time.Time `json:"obtained_at"`
}

// Expired reports whether the access token's advertised lifetime has passed.
// A zero ExpiresIn means the expiry is unknown and the pair is assumed live;
// the server remains the authority either way (a 401 triggers a refresh).
func (p *Pair) Expired(now time.Time) bool {
	if p.ExpiresIn <= 0 || p.ObtainedAt.IsZero() {
		return false
	}
	return now.After(p.ObtainedAt.Add(time.Duration(p.ExpiresIn) * time.Second))
}

// Persistence stores the token pair across process restarts.
// Implemented by the file state store.
type Persistence interface {
	// SaveTokens replaces the persisted pair.
	SaveTokens(p *Pair) error

	// ClearTokens removes the persisted pair.
	ClearTokens() error

	// LoadTokens returns the persisted pair, or nil if none exists.
	LoadTokens() (*Pair, error)
}

// flight is one in-flight refresh attempt shared by concurrent callers.
// ok is written exactly once before done is closed.
type flight struct {
	done chan struct{}
	ok   bool
}

// Manager holds the current token pair and serializes refresh attempts.
// Construct one per session context; there is no package-level instance.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	persist    Persistence
	logger     *slog.Logger

	mu       sync.Mutex
	pair     *Pair
	inflight *flight
}

// NewManager creates a Manager and loads any persisted pair.
// A load failure is logged and treated as an absent pair rather than
// propagated: a corrupt state file must not block a fresh login.
func NewManager(baseURL string, httpClient *http.Client, persist Persistence, logger *slog.Logger) *Manager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		persist:    persist,
		logger:     logger,
	}
	if persist != nil {
		pair, err := persist.LoadTokens()
		if err != nil {
			logger.Warn("failed to load persisted tokens", "error", err)
		} else {
			m.pair = pair
		}
	}
	return m
}

// AccessToken returns the current access token, or "" when unauthenticated.
// Non-blocking: callers racing a refresh see the pre-refresh value.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return ""
	}
	return m.pair.AccessToken
}

// RefreshToken returns the current refresh token, or "" when none is held.
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return ""
	}
	return m.pair.RefreshToken
}

// Authenticated reports whether an access token is currently held.
func (m *Manager) Authenticated() bool {
	return m.AccessToken() != ""
}

// SetTokens replaces the current pair and persists it.
// The replacement is atomic with respect to AccessToken/RefreshToken readers.
func (m *Manager) SetTokens(p *Pair) {
	cp := *p
	if cp.ObtainedAt.IsZero() {
		cp.ObtainedAt = time.Now().UTC()
	}

	m.mu.Lock()
	m.pair = &cp
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.SaveTokens(&cp); err != nil {
			m.logger.Warn("failed to persist tokens", "error", err)
		}
	}
}

// ClearTokens removes the pair from memory and durable storage.
func (m *Manager) ClearTokens() {
	m.mu.Lock()
	m.pair = nil
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.ClearTokens(); err != nil {
			m.logger.Warn("failed to clear persisted tokens", "error", err)
		}
	}
}

// Refresh exchanges the stored refresh token for a new pair and reports
// whether a valid access token resulted.
//
// At most one exchange is in flight at any time. Callers arriving while an
// exchange is pending await that same exchange and return its outcome; they
// never start a second network call. A missing refresh token is immediately
// fatal: tokens are cleared and false is returned without any network call.
// On exchange failure (transport or server) tokens are likewise cleared.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()

	if f := m.inflight; f != nil {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return false
		case <-f.done:
			return f.ok
		}
	}

	if m.pair == nil || m.pair.RefreshToken == "" {
		m.pair = nil
		m.mu.Unlock()
		if m.persist != nil {
			if err := m.persist.ClearTokens(); err != nil {
				m.logger.Warn("failed to clear persisted tokens", "error", err)
			}
		}
		m.logger.Debug("refresh skipped, no refresh token held")
		return false
	}

	f := &flight{done: make(chan struct{})}
	m.inflight = f
	refreshToken := m.pair.RefreshToken
	m.mu.Unlock()

	pair, err := m.exchange(ctx, refreshToken)

	if err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		m.ClearTokens()
	} else {
		m.SetTokens(pair)
		f.ok = true
	}

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	close(f.done)

	return f.ok
}

// exchange performs the refresh HTTP call. It does not touch manager state.
func (m *Manager) exchange(ctx context.Context, refreshToken string) (*Pair, error) {
	body, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+refreshPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read refresh response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, api.ParseError(resp.StatusCode, respBody)
	}

	var tr api.TokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing access token")
	}

	return &Pair{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
		ObtainedAt:   time.Now().UTC(),
	}, nil
}
