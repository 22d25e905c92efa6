package config

import (
	"testing"
	"time"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.Timeout != "30s" {
		t.Errorf("Server.Timeout = %q, want %q", cfg.Server.Timeout, "30s")
	}
	if cfg.State.Path == "" {
		t.Error("State.Path should default to a non-empty location")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Analytics.CacheTTL != "30s" {
		t.Errorf("Analytics.CacheTTL = %q, want %q", cfg.Analytics.CacheTTL, "30s")
	}
	if cfg.Defaults.Region != "US" {
		t.Errorf("Defaults.Region = %q, want %q", cfg.Defaults.Region, "US")
	}
	if cfg.Defaults.Timezone != "America/New_York" {
		t.Errorf("Defaults.Timezone = %q, want %q", cfg.Defaults.Timezone, "America/New_York")
	}
}

func TestConfig_SetDefaults_UKRegionPicksLondon(t *testing.T) {
	t.Parallel()

	cfg := Config{Defaults: DefaultsConfig{Region: "UK"}}
	cfg.SetDefaults()

	if cfg.Defaults.Timezone != "Europe/London" {
		t.Errorf("Defaults.Timezone = %q, want %q", cfg.Defaults.Timezone, "Europe/London")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server:    ServerConfig{Timeout: "5s"},
		State:     StateConfig{Path: "/custom/state.json"},
		Log:       LogConfig{Level: "debug"},
		Analytics: AnalyticsConfig{CacheTTL: "2m"},
		Defaults:  DefaultsConfig{Region: "UK", Timezone: "Europe/Dublin"},
	}
	cfg.SetDefaults()

	if cfg.Server.Timeout != "5s" {
		t.Errorf("Server.Timeout was overwritten: got %q", cfg.Server.Timeout)
	}
	if cfg.State.Path != "/custom/state.json" {
		t.Errorf("State.Path was overwritten: got %q", cfg.State.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level was overwritten: got %q", cfg.Log.Level)
	}
	if cfg.Analytics.CacheTTL != "2m" {
		t.Errorf("Analytics.CacheTTL was overwritten: got %q", cfg.Analytics.CacheTTL)
	}
	if cfg.Defaults.Timezone != "Europe/Dublin" {
		t.Errorf("Defaults.Timezone was overwritten: got %q", cfg.Defaults.Timezone)
	}
}

func TestConfig_RequestTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"parses valid duration", "5s", 5 * time.Second},
		{"parses minutes", "2m", 2 * time.Minute},
		{"falls back on empty", "", 30 * time.Second},
		{"falls back on garbage", "soon", 30 * time.Second},
		{"falls back on non-positive", "-1s", 30 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Server: ServerConfig{Timeout: tt.timeout}}
			if got := cfg.RequestTimeout(); got != tt.want {
				t.Errorf("RequestTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_AnalyticsCacheTTL(t *testing.T) {
	t.Parallel()

	cfg := Config{Analytics: AnalyticsConfig{CacheTTL: "90s"}}
	if got := cfg.AnalyticsCacheTTL(); got != 90*time.Second {
		t.Errorf("AnalyticsCacheTTL() = %v, want 90s", got)
	}

	cfg.Analytics.CacheTTL = "bogus"
	if got := cfg.AnalyticsCacheTTL(); got != 30*time.Second {
		t.Errorf("AnalyticsCacheTTL() fallback = %v, want 30s", got)
	}
}
