package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialflow/socialflow/internal/config"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset SocialFlow to a clean state",
	Long: `Reset SocialFlow by removing the client state file and its backup.

This clears the persisted token pair and account snapshot. The next command
starts unauthenticated; log in again to create a new session.

Examples:
  # Reset with interactive confirmation
  socialflow reset

  # Reset without prompting
  socialflow reset --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	path := statePath
	if path == "" {
		if cfg, err := config.LoadConfig(); err == nil {
			path = cfg.State.Path
		}
	}
	if path == "" {
		path = "./state.json"
	}

	type target struct {
		path string
		desc string
	}
	targets := []target{
		{path, "state file"},
		{path + ".bak", "state backup"},
	}

	var existing []target
	for _, t := range targets {
		if _, err := os.Stat(t.path); err == nil {
			existing = append(existing, t)
		}
	}

	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset — no state files found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, t := range existing {
		fmt.Fprintf(os.Stderr, "  - %s (%s)\n", t.path, t.desc)
	}

	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	var errors int
	for _, t := range existing {
		if err := os.Remove(t.path); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", t.path, err)
			errors++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", t.path)
		}
	}

	if errors > 0 {
		return fmt.Errorf("%d file(s) could not be removed", errors)
	}

	fmt.Fprintln(os.Stderr, "\nReset complete. SocialFlow starts fresh on the next command.")
	return nil
}
