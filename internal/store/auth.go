package store

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/token"
)

// SessionPersistence stores the auth store's {user, isAuthenticated}
// snapshot across process restarts. Implemented by the file state store.
type SessionPersistence interface {
	SaveSession(user *api.User, authenticated bool) error
	ClearSession() error
	LoadSession() (*api.User, bool, error)
}

// AuthStore owns the session slice of server-mirrored state: the current
// user profile and the derived isAuthenticated flag. Only auth actions
// mutate the session; view code reads through accessors.
type AuthStore struct {
	base
	gw      Caller
	tokens  *token.Manager
	persist SessionPersistence
	logger  *slog.Logger

	user          *api.User
	authenticated bool
}

// NewAuthStore creates an AuthStore. persist may be nil to disable the
// durable session snapshot (tests); logger may be nil for the default.
func NewAuthStore(gw Caller, tokens *token.Manager, persist SessionPersistence, logger *slog.Logger) *AuthStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthStore{
		gw:      gw,
		tokens:  tokens,
		persist: persist,
		logger:  logger,
	}
}

// User returns a copy of the current profile, or nil when signed out.
func (s *AuthStore) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Authenticated reports whether a server-confirmed session is held.
func (s *AuthStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Login exchanges credentials for a token pair and the user profile.
// On success the token manager holds the new pair and the session snapshot
// is persisted.
func (s *AuthStore) Login(ctx context.Context, email, password string) bool {
	s.begin()

	var resp api.TokenResponse
	err := s.gw.Do(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		s.fail(err)
		return false
	}

	s.establishSession(&resp)
	s.finish()
	return true
}

// Register creates an account. The server returns a full token response, so
// a successful registration also signs the user in.
func (s *AuthStore) Register(ctx context.Context, req api.RegisterRequest) bool {
	s.begin()

	var resp api.TokenResponse
	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/auth/register", nil, req, &resp); err != nil {
		s.fail(err)
		return false
	}

	s.establishSession(&resp)
	s.finish()
	return true
}

// establishSession stores the token pair and session from a token response.
func (s *AuthStore) establishSession(resp *api.TokenResponse) {
	s.tokens.SetTokens(&token.Pair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
	})

	s.mu.Lock()
	s.user = resp.User
	s.authenticated = true
	s.mu.Unlock()

	s.persistSession()
}

// Logout invalidates the session server-side, then clears tokens and the
// persisted snapshot regardless of the server outcome: a dead session on a
// flaky network must still log out locally.
func (s *AuthStore) Logout(ctx context.Context) bool {
	s.begin()

	err := s.gw.Do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil)

	s.tokens.ClearTokens()
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	if s.persist != nil {
		if perr := s.persist.ClearSession(); perr != nil {
			s.logger.Warn("failed to clear persisted session", "error", perr)
		}
	}

	if err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return true
}

// FetchMe refreshes the profile from the server.
func (s *AuthStore) FetchMe(ctx context.Context) bool {
	s.begin()

	var user api.User
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &user); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()

	s.persistSession()
	s.finish()
	return true
}

// UpdateMe applies a partial profile update and reconciles the returned
// profile into the session.
func (s *AuthStore) UpdateMe(ctx context.Context, update api.UserUpdate) bool {
	s.begin()

	var user api.User
	if err := s.gw.Do(ctx, http.MethodPut, "/api/v1/auth/me", nil, update, &user); err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.persistSession()
	s.finish()
	return true
}

// RequestPasswordReset starts the reset flow for an email address.
func (s *AuthStore) RequestPasswordReset(ctx context.Context, email string) bool {
	s.begin()

	err := s.gw.Do(ctx, http.MethodPost, "/api/v1/auth/password-reset", nil,
		api.PasswordResetRequest{Email: email}, nil)
	if err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return true
}

// ConfirmPasswordReset completes the reset flow with the emailed token.
func (s *AuthStore) ConfirmPasswordReset(ctx context.Context, req api.PasswordResetConfirm) bool {
	s.begin()

	if err := s.gw.Do(ctx, http.MethodPost, "/api/v1/auth/password-reset-confirm", nil, req, nil); err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return true
}

// DeleteAccount deactivates the account server-side. On confirmation the
// local session is torn down the same way a logout tears it down; a rejected
// delete leaves the session intact.
func (s *AuthStore) DeleteAccount(ctx context.Context) bool {
	s.begin()

	if err := s.gw.Do(ctx, http.MethodDelete, "/api/v1/auth/account", nil, nil, nil); err != nil {
		s.fail(err)
		return false
	}

	s.tokens.ClearTokens()
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	if s.persist != nil {
		if perr := s.persist.ClearSession(); perr != nil {
			s.logger.Warn("failed to clear persisted session", "error", perr)
		}
	}

	s.finish()
	return true
}

// FetchStats loads the account's usage snapshot. Returned rather than
// mirrored: it is a report view, not session state.
func (s *AuthStore) FetchStats(ctx context.Context) (*api.UserStats, bool) {
	s.begin()

	var stats api.UserStats
	if err := s.gw.Do(ctx, http.MethodGet, "/api/v1/auth/stats", nil, nil, &stats); err != nil {
		s.fail(err)
		return nil, false
	}

	s.finish()
	return &stats, true
}

// Restore loads the persisted session snapshot, used once at startup so the
// UI can render the last-known session before any network call. The token
// manager restores the pair itself; Restore only covers the profile mirror.
func (s *AuthStore) Restore() bool {
	if s.persist == nil {
		return false
	}
	user, authenticated, err := s.persist.LoadSession()
	if err != nil {
		s.logger.Warn("failed to restore persisted session", "error", err)
		return false
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = authenticated
	s.mu.Unlock()

	return authenticated
}

// Reset restores all in-memory fields to their initial values. Persisted
// state is left alone; Logout is the action that clears it.
func (s *AuthStore) Reset() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}

// persistSession writes the current snapshot; failures are logged, not
// surfaced, since the in-memory session is already authoritative for the UI.
func (s *AuthStore) persistSession() {
	if s.persist == nil {
		return
	}
	s.mu.Lock()
	user := s.user
	authenticated := s.authenticated
	s.mu.Unlock()

	if err := s.persist.SaveSession(user, authenticated); err != nil {
		s.logger.Warn("failed to persist session snapshot", "error", err)
	}
}
