package store

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/token"
)

// memSession is an in-memory SessionPersistence for tests.
type memSession struct {
	mu            sync.Mutex
	user          *api.User
	authenticated bool
	saved         bool
	loadErr       error
}

func (p *memSession) SaveSession(user *api.User, authenticated bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if user != nil {
		cp := *user
		p.user = &cp
	} else {
		p.user = nil
	}
	p.authenticated = authenticated
	p.saved = true
	return nil
}

func (p *memSession) ClearSession() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	p.authenticated = false
	return nil
}

func (p *memSession) LoadSession() (*api.User, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, false, p.loadErr
	}
	if p.user == nil {
		return nil, p.authenticated, nil
	}
	cp := *p.user
	return &cp, p.authenticated, nil
}

func newAuthFixture(handler func(method, path string, query url.Values, body, out any) error) (*AuthStore, *fakeCaller, *token.Manager, *memSession) {
	gw := &fakeCaller{handler: handler}
	tokens := token.NewManager("http://backend", nil, nil, nil)
	persist := &memSession{}
	return NewAuthStore(gw, tokens, persist, nil), gw, tokens, persist
}

func TestAuthStore_Login(t *testing.T) {
	user := api.User{ID: 1, Email: "jo@example.com", Username: "jo", Plan: "starter"}
	s, gw, tokens, persist := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		if method != http.MethodPost || path != "/api/v1/auth/login" {
			t.Errorf("unexpected request %s %s", method, path)
		}
		req := body.(api.LoginRequest)
		if req.Email != "jo@example.com" || req.Password != "pw" {
			t.Errorf("unexpected credentials %+v", req)
		}
		return respond(t, out, api.TokenResponse{
			AccessToken:  "T1",
			RefreshToken: "R1",
			TokenType:    "bearer",
			ExpiresIn:    1800,
			User:         &user,
		})
	})

	if !s.Login(context.Background(), "jo@example.com", "pw") {
		t.Fatalf("expected login to succeed, err %q", s.Err())
	}

	if got := s.User(); got == nil || got.ID != 1 {
		t.Errorf("expected user id 1, got %+v", got)
	}
	if !s.Authenticated() {
		t.Error("expected authenticated")
	}
	if got := tokens.AccessToken(); got != "T1" {
		t.Errorf("expected access token T1 held, got %q", got)
	}
	if got := tokens.RefreshToken(); got != "R1" {
		t.Errorf("expected refresh token R1 held, got %q", got)
	}
	if s.Loading() || s.Err() != "" {
		t.Error("expected clean action state after success")
	}
	if n := len(gw.recorded()); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}

	persist.mu.Lock()
	defer persist.mu.Unlock()
	if !persist.saved || persist.user == nil || !persist.authenticated {
		t.Error("expected session snapshot persisted")
	}
}

func TestAuthStore_LoginFailureLeavesSessionUntouched(t *testing.T) {
	s, _, tokens, persist := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		return serverError(http.StatusUnauthorized, "incorrect email or password")
	})

	if s.Login(context.Background(), "jo@example.com", "bad") {
		t.Fatal("expected login to fail")
	}

	if s.Authenticated() {
		t.Error("expected unauthenticated after rejected login")
	}
	if s.User() != nil {
		t.Error("expected no user mirrored")
	}
	if tokens.Authenticated() {
		t.Error("expected no tokens held")
	}
	if s.Err() != "api [401]: incorrect email or password" {
		t.Errorf("unexpected error message %q", s.Err())
	}
	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.saved {
		t.Error("expected nothing persisted on failure")
	}
}

func TestAuthStore_Register(t *testing.T) {
	user := api.User{ID: 2, Email: "new@example.com", Username: "new"}
	s, _, tokens, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		if path != "/api/v1/auth/register" {
			t.Errorf("unexpected path %s", path)
		}
		req := body.(api.RegisterRequest)
		if req.PreferredRegion != api.RegionUK {
			t.Errorf("expected region UK, got %q", req.PreferredRegion)
		}
		return respond(t, out, api.TokenResponse{AccessToken: "T1", RefreshToken: "R1", User: &user})
	})

	ok := s.Register(context.Background(), api.RegisterRequest{
		Email:           "new@example.com",
		Username:        "new",
		Password:        "pw",
		PreferredRegion: api.RegionUK,
		Timezone:        "Europe/London",
	})
	if !ok {
		t.Fatalf("expected register to succeed, err %q", s.Err())
	}
	if !s.Authenticated() || !tokens.Authenticated() {
		t.Error("expected a live session after registration")
	}
}

func TestAuthStore_LogoutClearsLocallyEvenOnServerFailure(t *testing.T) {
	s, _, tokens, persist := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		switch path {
		case "/api/v1/auth/login":
			return respond(t, out, api.TokenResponse{
				AccessToken:  "T1",
				RefreshToken: "R1",
				User:         &api.User{ID: 1},
			})
		case "/api/v1/auth/logout":
			return serverError(http.StatusInternalServerError, "upstream down")
		}
		t.Errorf("unexpected path %s", path)
		return nil
	})

	if !s.Login(context.Background(), "jo@example.com", "pw") {
		t.Fatal("login failed")
	}

	if s.Logout(context.Background()) {
		t.Error("expected logout to report the server failure")
	}
	if s.Authenticated() || s.User() != nil {
		t.Error("expected local session cleared despite server failure")
	}
	if tokens.Authenticated() {
		t.Error("expected tokens cleared")
	}
	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.user != nil || persist.authenticated {
		t.Error("expected persisted session cleared")
	}
}

func TestAuthStore_FetchMe(t *testing.T) {
	s, _, _, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		if method != http.MethodGet || path != "/api/v1/auth/me" {
			t.Errorf("unexpected request %s %s", method, path)
		}
		return respond(t, out, api.User{ID: 1, Username: "jo", AICreditsRemaining: 40})
	})

	if !s.FetchMe(context.Background()) {
		t.Fatalf("expected fetch to succeed, err %q", s.Err())
	}
	if got := s.User(); got == nil || got.AICreditsRemaining != 40 {
		t.Errorf("expected refreshed profile, got %+v", got)
	}
}

func TestAuthStore_UpdateMeReconcilesServerVersion(t *testing.T) {
	s, _, _, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		if method != http.MethodPut || path != "/api/v1/auth/me" {
			t.Errorf("unexpected request %s %s", method, path)
		}
		update := body.(api.UserUpdate)
		if update.FullName == nil || *update.FullName != "Jo Doe" {
			t.Errorf("unexpected update body %+v", update)
		}
		if update.Timezone != nil {
			t.Error("expected unset fields omitted")
		}
		// The server normalizes beyond what was sent.
		return respond(t, out, api.User{ID: 1, FullName: "Jo Doe", Timezone: "America/New_York"})
	})

	name := "Jo Doe"
	if !s.UpdateMe(context.Background(), api.UserUpdate{FullName: &name}) {
		t.Fatalf("expected update to succeed, err %q", s.Err())
	}
	if got := s.User(); got.Timezone != "America/New_York" {
		t.Errorf("expected the server-confirmed profile mirrored, got %+v", got)
	}
}

func TestAuthStore_PasswordResetFlow(t *testing.T) {
	var paths []string
	s, _, _, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		paths = append(paths, path)
		return nil
	})

	if !s.RequestPasswordReset(context.Background(), "jo@example.com") {
		t.Fatal("expected reset request to succeed")
	}
	ok := s.ConfirmPasswordReset(context.Background(), api.PasswordResetConfirm{
		Email:       "jo@example.com",
		ResetToken:  "tok",
		NewPassword: "pw2",
	})
	if !ok {
		t.Fatal("expected reset confirm to succeed")
	}

	want := []string{"/api/v1/auth/password-reset", "/api/v1/auth/password-reset-confirm"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("unexpected paths %v", paths)
	}
}

func TestAuthStore_DeleteAccountTearsDownSession(t *testing.T) {
	s, _, tokens, persist := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		switch path {
		case "/api/v1/auth/login":
			return respond(t, out, api.TokenResponse{
				AccessToken:  "T1",
				RefreshToken: "R1",
				User:         &api.User{ID: 1},
			})
		case "/api/v1/auth/account":
			if method != http.MethodDelete {
				t.Errorf("unexpected method %s", method)
			}
			return nil
		}
		t.Errorf("unexpected path %s", path)
		return nil
	})

	if !s.Login(context.Background(), "jo@example.com", "pw") {
		t.Fatal("login failed")
	}

	if !s.DeleteAccount(context.Background()) {
		t.Fatalf("expected delete to succeed, err %q", s.Err())
	}
	if s.Authenticated() || s.User() != nil {
		t.Error("expected local session torn down")
	}
	if tokens.Authenticated() {
		t.Error("expected tokens cleared")
	}
	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.user != nil || persist.authenticated {
		t.Error("expected persisted session cleared")
	}
}

func TestAuthStore_RejectedDeleteAccountLeavesSessionIntact(t *testing.T) {
	s, _, tokens, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		switch path {
		case "/api/v1/auth/login":
			return respond(t, out, api.TokenResponse{
				AccessToken:  "T1",
				RefreshToken: "R1",
				User:         &api.User{ID: 1},
			})
		case "/api/v1/auth/account":
			return serverError(http.StatusUnauthorized, "could not validate credentials")
		}
		t.Errorf("unexpected path %s", path)
		return nil
	})

	if !s.Login(context.Background(), "jo@example.com", "pw") {
		t.Fatal("login failed")
	}

	if s.DeleteAccount(context.Background()) {
		t.Fatal("expected delete to fail")
	}
	if !s.Authenticated() || !tokens.Authenticated() {
		t.Error("expected the session intact after a rejected delete")
	}
}

func TestAuthStore_FetchStats(t *testing.T) {
	s, _, _, _ := newAuthFixture(func(method, path string, query url.Values, body, out any) error {
		if method != http.MethodGet || path != "/api/v1/auth/stats" {
			t.Errorf("unexpected request %s %s", method, path)
		}
		return respond(t, out, api.UserStats{
			UserID:             1,
			Plan:               "starter",
			PostsUsedThisMonth: 12,
			MonthlyPostLimit:   50,
			UsagePercentage:    24,
		})
	})

	stats, ok := s.FetchStats(context.Background())
	if !ok {
		t.Fatalf("expected stats to succeed, err %q", s.Err())
	}
	if stats.PostsUsedThisMonth != 12 || stats.UsagePercentage != 24 {
		t.Errorf("unexpected stats %+v", stats)
	}
	// A report view: the session mirror stays untouched.
	if s.User() != nil || s.Authenticated() {
		t.Error("expected stats fetch to leave the session alone")
	}
}

func TestAuthStore_Restore(t *testing.T) {
	persist := &memSession{user: &api.User{ID: 1, Username: "jo"}, authenticated: true}
	s := NewAuthStore(&fakeCaller{}, token.NewManager("http://backend", nil, nil, nil), persist, nil)

	if !s.Restore() {
		t.Fatal("expected restore to report an authenticated snapshot")
	}
	if got := s.User(); got == nil || got.Username != "jo" {
		t.Errorf("expected restored profile, got %+v", got)
	}
	if !s.Authenticated() {
		t.Error("expected authenticated from snapshot")
	}
}

func TestAuthStore_RestoreFailureIsNotFatal(t *testing.T) {
	persist := &memSession{loadErr: errors.New("corrupt state file")}
	s := NewAuthStore(&fakeCaller{}, token.NewManager("http://backend", nil, nil, nil), persist, nil)

	if s.Restore() {
		t.Error("expected restore to report no session")
	}
	if s.Authenticated() {
		t.Error("expected unauthenticated after failed restore")
	}
}
