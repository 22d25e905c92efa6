// Package cmd provides the CLI commands for SocialFlow.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialflow/socialflow/internal/client"
	"github.com/socialflow/socialflow/internal/config"
)

var cfgFile string
var statePath string

var rootCmd = &cobra.Command{
	Use:   "socialflow",
	Short: "SocialFlow - AI-powered Facebook page automation client",
	Long: `SocialFlow is the command-line client for the SocialFlow automation
platform: AI content generation, post scheduling, and engagement analytics
for connected Facebook pages.

Quick start:
  1. Point the client at your backend: SOCIALFLOW_SERVER_ADDR=https://api.example.com
  2. Log in: socialflow login --email you@example.com
  3. Connect a page: socialflow pages connect ...

Configuration:
  Config is loaded from socialflow.yaml in the current directory,
  $HOME/.socialflow/, or /etc/socialflow/.

  Environment variables can override config values with the SOCIALFLOW_ prefix.
  Example: SOCIALFLOW_SERVER_ADDR=https://api.example.com

Sessions survive restarts: the token pair and account snapshot are persisted
to the state file (default: ~/.socialflow/state.json) and restored on the
next invocation.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./socialflow.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "path to state.json file (default: ~/.socialflow/state.json)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// newClient loads configuration, applies CLI flag overrides, and assembles
// the client. Any persisted session is restored during construction.
func newClient() (*client.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if statePath != "" {
		cfg.State.Path = statePath
	}
	return client.New(cfg)
}

// storeFailure converts a store's last-error message into a command error.
func storeFailure(msg string) error {
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Errorf("%s", msg)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
