// Package config provides configuration for the SocialFlow client.
//
// Configuration is file-based (socialflow.yaml) with environment variable
// overrides under the SOCIALFLOW_ prefix. Only client-side concerns live
// here: the backend address, request timeouts, the state file location, and
// presentation defaults. Server behavior is configured server-side.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration for the SocialFlow client.
type Config struct {
	// Server configures how the backend API is reached.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// State configures the durable client state file.
	State StateConfig `yaml:"state" mapstructure:"state"`

	// Log configures client logging.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Analytics configures client-side analytics caching.
	Analytics AnalyticsConfig `yaml:"analytics" mapstructure:"analytics"`

	// Defaults are presentation defaults applied to new requests.
	Defaults DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
}

// ServerConfig configures the backend API endpoint.
type ServerConfig struct {
	// Addr is the backend base URL, e.g. "https://api.socialflow.example".
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required,url"`

	// Timeout is the per-request timeout (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// StateConfig configures the durable state file.
type StateConfig struct {
	// Path is the state file location. Default: ~/.socialflow/state.json.
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures client logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// AnalyticsConfig configures client-side analytics caching.
type AnalyticsConfig struct {
	// CacheTTL bounds how long dashboard/summary payloads are served from
	// the local cache (e.g. "30s"). Empty uses the built-in default.
	CacheTTL string `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"omitempty,duration"`
}

// DefaultsConfig holds presentation defaults for new requests.
type DefaultsConfig struct {
	// Region is the default regional profile: "US" or "UK".
	Region string `yaml:"region" mapstructure:"region" validate:"omitempty,oneof=US UK"`

	// Timezone is the default IANA timezone for new pages.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// PageID preselects a page for content and analytics commands.
	PageID int `yaml:"page_id" mapstructure:"page_id" validate:"omitempty,min=1"`
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Server.Timeout == "" {
		c.Server.Timeout = "30s"
	}
	if c.State.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.State.Path = filepath.Join(home, ".socialflow", "state.json")
		} else {
			c.State.Path = "./state.json"
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Analytics.CacheTTL == "" {
		c.Analytics.CacheTTL = "30s"
	}
	if c.Defaults.Region == "" {
		c.Defaults.Region = "US"
	}
	if c.Defaults.Timezone == "" {
		if c.Defaults.Region == "UK" {
			c.Defaults.Timezone = "Europe/London"
		} else {
			c.Defaults.Timezone = "America/New_York"
		}
	}
}

// RequestTimeout parses Server.Timeout. Validation guarantees the format, so
// a parse failure here falls back to 30 seconds rather than erroring.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AnalyticsCacheTTL parses Analytics.CacheTTL with the same fallback policy.
func (c *Config) AnalyticsCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Analytics.CacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
