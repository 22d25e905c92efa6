package token

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/socialflow/socialflow/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memPersistence is an in-memory Persistence for tests.
type memPersistence struct {
	mu      sync.Mutex
	pair    *Pair
	saves   int
	clears  int
	loadErr error
}

func (p *memPersistence) SaveTokens(pair *Pair) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *pair
	p.pair = &cp
	p.saves++
	return nil
}

func (p *memPersistence) ClearTokens() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pair = nil
	p.clears++
	return nil
}

func (p *memPersistence) LoadTokens() (*Pair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.pair == nil {
		return nil, nil
	}
	cp := *p.pair
	return &cp, nil
}

func newRefreshServer(t *testing.T, calls *atomic.Int64, status int, resp api.TokenResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/auth/refresh" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		var req api.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode refresh request: %v", err)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(resp) //nolint:errcheck
		} else {
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh token expired"}) //nolint:errcheck
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefresh_RotatesPair(t *testing.T) {
	var calls atomic.Int64
	srv := newRefreshServer(t, &calls, http.StatusOK, api.TokenResponse{
		AccessToken:  "A2",
		RefreshToken: "R2",
		TokenType:    "bearer",
		ExpiresIn:    1800,
	})

	persist := &memPersistence{}
	m := NewManager(srv.URL, srv.Client(), persist, nil)
	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1"})

	if !m.Refresh(context.Background()) {
		t.Fatal("expected refresh to succeed")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 exchange, got %d", n)
	}
	if got := m.AccessToken(); got != "A2" {
		t.Errorf("expected access token A2, got %q", got)
	}
	if got := m.RefreshToken(); got != "R2" {
		t.Errorf("expected refresh token R2, got %q", got)
	}

	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.pair == nil || persist.pair.AccessToken != "A2" {
		t.Error("expected rotated pair persisted")
	}
}

func TestRefresh_ConcurrentCallersShareOneFlight(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		json.NewEncoder(w).Encode(api.TokenResponse{ //nolint:errcheck
			AccessToken:  "A2",
			RefreshToken: "R2",
			TokenType:    "bearer",
			ExpiresIn:    1800,
		})
	}))
	defer srv.Close()

	m := NewManager(srv.URL, srv.Client(), nil, nil)
	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1"})

	// First caller blocks inside the exchange; the rest must join its flight.
	const waiters = 8
	var wg sync.WaitGroup
	results := make([]bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Refresh(context.Background())
		}(i)
	}

	// Let every goroutine reach the manager before the exchange returns.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 exchange, got %d", n)
	}
	for i, ok := range results {
		if !ok {
			t.Errorf("caller %d: expected refresh to succeed", i)
		}
	}
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	var calls atomic.Int64
	srv := newRefreshServer(t, &calls, http.StatusOK, api.TokenResponse{AccessToken: "A2"})

	persist := &memPersistence{}
	m := NewManager(srv.URL, srv.Client(), persist, nil)
	m.SetTokens(&Pair{AccessToken: "A1"}) // no refresh token

	if m.Refresh(context.Background()) {
		t.Error("expected refresh to fail without a refresh token")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("expected no network call, got %d", n)
	}
	if m.Authenticated() {
		t.Error("expected tokens cleared")
	}
	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.pair != nil {
		t.Error("expected persisted tokens cleared")
	}
}

func TestRefresh_ServerRejectsClearsTokens(t *testing.T) {
	var calls atomic.Int64
	srv := newRefreshServer(t, &calls, http.StatusUnauthorized, api.TokenResponse{})

	persist := &memPersistence{}
	m := NewManager(srv.URL, srv.Client(), persist, nil)
	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1"})

	if m.Refresh(context.Background()) {
		t.Error("expected refresh to fail")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 exchange, got %d", n)
	}
	if m.Authenticated() {
		t.Error("expected tokens cleared after rejected refresh")
	}
	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.pair != nil {
		t.Error("expected persisted tokens cleared")
	}
}

func TestRefresh_TransportFailureClearsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	m := NewManager(srv.URL, &http.Client{Timeout: time.Second}, nil, nil)
	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1"})

	if m.Refresh(context.Background()) {
		t.Error("expected refresh to fail on transport error")
	}
	if m.Authenticated() {
		t.Error("expected tokens cleared")
	}
}

func TestNewManager_LoadsPersistedPair(t *testing.T) {
	persist := &memPersistence{pair: &Pair{AccessToken: "A1", RefreshToken: "R1"}}
	m := NewManager("http://backend", nil, persist, nil)

	if got := m.AccessToken(); got != "A1" {
		t.Errorf("expected restored access token A1, got %q", got)
	}
	if !m.Authenticated() {
		t.Error("expected authenticated after restore")
	}
}

func TestNewManager_LoadFailureIsNotFatal(t *testing.T) {
	persist := &memPersistence{loadErr: errors.New("corrupt state file")}
	m := NewManager("http://backend", nil, persist, nil)

	if m.Authenticated() {
		t.Error("expected unauthenticated after load failure")
	}

	// A fresh login must still work.
	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1"})
	if !m.Authenticated() {
		t.Error("expected authenticated after SetTokens")
	}
}

func TestSetTokens_Persists(t *testing.T) {
	persist := &memPersistence{}
	m := NewManager("http://backend", nil, persist, nil)

	m.SetTokens(&Pair{AccessToken: "A1", RefreshToken: "R1", ExpiresIn: 1800})

	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.saves != 1 {
		t.Fatalf("expected 1 save, got %d", persist.saves)
	}
	if persist.pair.AccessToken != "A1" {
		t.Errorf("expected persisted access token A1, got %q", persist.pair.AccessToken)
	}
	if persist.pair.ObtainedAt.IsZero() {
		t.Error("expected ObtainedAt stamped on save")
	}
}

func TestPair_Expired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		pair Pair
		want bool
	}{
		{"zero expiry assumed live", Pair{AccessToken: "A"}, false},
		{"fresh pair", Pair{ExpiresIn: 1800, ObtainedAt: now}, false},
		{"past lifetime", Pair{ExpiresIn: 60, ObtainedAt: now.Add(-2 * time.Minute)}, true},
		{"missing obtained time assumed live", Pair{ExpiresIn: 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
