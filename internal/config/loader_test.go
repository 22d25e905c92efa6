package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// writeConfigFile marshals cfg to dir/socialflow.yaml.
func writeConfigFile(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(dir, "socialflow.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFindConfigFileInPaths(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, map[string]any{"log": map[string]any{"level": "debug"}})

	found := findConfigFileInPaths([]string{t.TempDir(), dir})
	if found != filepath.Join(dir, "socialflow.yaml") {
		t.Errorf("expected fixture found, got %q", found)
	}

	if found := findConfigFileInPaths([]string{t.TempDir()}); found != "" {
		t.Errorf("expected no match in empty dir, got %q", found)
	}
}

func TestFindConfigFileInPaths_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "socialflow.yml"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	writeConfigFile(t, dir, map[string]any{})

	found := findConfigFileInPaths([]string{dir})
	if filepath.Ext(found) != ".yaml" {
		t.Errorf("expected .yaml preferred, got %q", found)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, t.TempDir(), map[string]any{
		"server": map[string]any{
			"addr":    "https://api.socialflow.example",
			"timeout": "10s",
		},
		"log": map[string]any{"level": "debug"},
		"defaults": map[string]any{
			"region":  "UK",
			"page_id": 5,
		},
	})
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Addr != "https://api.socialflow.example" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Timeout != "10s" {
		t.Errorf("Server.Timeout = %q, want 10s", cfg.Server.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Defaults.Region != "UK" || cfg.Defaults.PageID != 5 {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	// Unset keys get defaults.
	if cfg.Defaults.Timezone != "Europe/London" {
		t.Errorf("Defaults.Timezone = %q, want Europe/London", cfg.Defaults.Timezone)
	}
	if cfg.Analytics.CacheTTL != "30s" {
		t.Errorf("Analytics.CacheTTL = %q, want 30s", cfg.Analytics.CacheTTL)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, t.TempDir(), map[string]any{
		"server": map[string]any{"addr": "https://file.example"},
	})
	t.Setenv("SOCIALFLOW_SERVER_ADDR", "https://env.example")
	t.Setenv("SOCIALFLOW_LOG_LEVEL", "warn")
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Addr != "https://env.example" {
		t.Errorf("Server.Addr = %q, want the env override", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadConfig_ExplicitMissingFileErrors(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SOCIALFLOW_SERVER_ADDR", "https://env-only.example")
	InitViper(filepath.Join(t.TempDir(), "missing.yaml"))

	// An explicitly named but missing file is an error; only the
	// nothing-found-on-the-search-path case is tolerated.
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for an explicitly named missing file")
	}
}

func TestLoadConfig_ValidationFailureSurfaces(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, t.TempDir(), map[string]any{
		"server": map[string]any{"addr": "https://api.example"},
		"log":    map[string]any{"level": "verbose"},
	})
	InitViper(path)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected validation error for a bad log level")
	}
}
