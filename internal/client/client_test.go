package client

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socialflow/socialflow/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Addr: "https://api.socialflow.example"},
		State:  config.StateConfig{Path: filepath.Join(t.TempDir(), "nested", "state.json")},
	}
	cfg.SetDefaults()
	return cfg
}

func TestNew_WiresComponents(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if c.State == nil || c.Tokens == nil || c.Gateway == nil {
		t.Fatal("expected core components wired")
	}
	if c.Auth == nil || c.Pages == nil || c.Content == nil || c.Analytics == nil {
		t.Fatal("expected all domain stores wired")
	}
	if c.Registry() == nil {
		t.Error("expected a default registry")
	}

	// The state file's directory is created even when nested.
	if _, err := os.Stat(filepath.Dir(cfg.State.Path)); err != nil {
		t.Errorf("expected state directory created: %v", err)
	}

	// No session has been established yet.
	if c.Auth.Authenticated() || c.Tokens.Authenticated() {
		t.Error("expected a fresh client to be unauthenticated")
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	cfg := testConfig(t)

	hc := &http.Client{Timeout: 3 * time.Second}
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	c, err := New(cfg, WithHTTPClient(hc), WithRegistry(reg), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if c.httpClient != hc {
		t.Error("expected the provided HTTP client used")
	}
	if c.Registry() != reg {
		t.Error("expected the provided registry used")
	}
	if c.Logger() != logger {
		t.Error("expected the provided logger used")
	}
}

func TestResetAll(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	c.Pages.SelectPage(5)
	c.ResetAll()

	if c.Pages.SelectedPageID() != 0 {
		t.Error("expected store state reset")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.level); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
