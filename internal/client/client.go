// Package client wires the SocialFlow client components together: config →
// state file → token manager → gateway → domain stores.
//
// A Client is an explicitly constructed session context. Nothing here is a
// package-level singleton; tests build isolated instances per case.
package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socialflow/socialflow/internal/config"
	"github.com/socialflow/socialflow/internal/gateway"
	"github.com/socialflow/socialflow/internal/state"
	"github.com/socialflow/socialflow/internal/store"
	"github.com/socialflow/socialflow/internal/token"
)

// Client is the assembled SocialFlow client.
type Client struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	httpClient *http.Client

	// State is the durable client state file.
	State *state.FileStore

	// Tokens owns the bearer/refresh pair.
	Tokens *token.Manager

	// Gateway dispatches authenticated API calls.
	Gateway *gateway.Gateway

	// Domain stores, one per server-owned slice of state.
	Auth      *store.AuthStore
	Pages     *store.PagesStore
	Content   *store.ContentStore
	Analytics *store.AnalyticsStore
}

// New assembles a Client from configuration. The state file's directory is
// created if missing; any persisted token pair and session snapshot are
// loaded so the session survives restarts.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	c := &Client{cfg: cfg}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(cfg.Log.Level),
		}))
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.RequestTimeout()}
	}

	statePath := cfg.State.Path
	if dir := filepath.Dir(statePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	c.State = state.NewFileStore(statePath, c.logger)

	c.Tokens = token.NewManager(cfg.Server.Addr, c.httpClient, c.State, c.logger)

	metrics := gateway.NewMetrics(c.registry)
	c.Gateway = gateway.New(cfg.Server.Addr, c.Tokens, c.httpClient, metrics, c.logger)

	c.Auth = store.NewAuthStore(c.Gateway, c.Tokens, c.State, c.logger)
	c.Pages = store.NewPagesStore(c.Gateway, c.logger)
	c.Content = store.NewContentStore(c.Gateway, c.logger)
	c.Analytics = store.NewAnalyticsStore(c.Gateway, cfg.AnalyticsCacheTTL(), c.logger)

	c.Auth.Restore()

	return c, nil
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Registry returns the metrics registry for gathering.
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// ResetAll restores every store to its initial values. Used on teardown; the
// persisted pair and session snapshot are cleared by Logout, not here.
func (c *Client) ResetAll() {
	c.Auth.Reset()
	c.Pages.Reset()
	c.Content.Reset()
	c.Analytics.Reset()
}

// ParseLevel maps a config log level to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
