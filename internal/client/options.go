package client

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option customizes Client construction.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a text handler on stderr at the
// configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for all backend calls, including
// token refresh. Defaults to one with the configured request timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRegistry sets the Prometheus registry gateway metrics register against.
// Defaults to a fresh registry per Client.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Client) {
		c.registry = reg
	}
}
