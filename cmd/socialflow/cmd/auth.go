package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialflow/socialflow/internal/api"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the SocialFlow backend",
	Long: `Exchange credentials for a token pair and persist the session.

The password is read from the --password flag or, if omitted, from the
SOCIALFLOW_PASSWORD environment variable.`,
	RunE: runLogin,
}

var (
	registerEmail    string
	registerUsername string
	registerPassword string
	registerFullName string
	registerRegion   string
	registerTimezone string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new SocialFlow account",
	Long: `Create an account and log in. Region and timezone default to the
configured presentation defaults.`,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the persisted session",
	Long: `Notify the server and clear the local session. The local session is
cleared even when the server call fails, so logout always succeeds locally.`,
	RunE: runLogout,
}

var whoamiRemote bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current account",
	Long: `Show the persisted account snapshot. With --remote, refetch the
account from the server first.`,
	RunE: runWhoami,
}

var (
	updateFullName string
	updateRegion   string
	updateTimezone string
)

var accountUpdateCmd = &cobra.Command{
	Use:   "account-update",
	Short: "Update account settings",
	Long:  `Apply a partial account update. Only the flags you pass are changed.`,
	RunE:  runAccountUpdate,
}

var (
	resetEmail       string
	resetToken       string
	resetNewPassword string
)

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset",
	Short: "Reset a forgotten password",
	Long: `Start or complete the password reset flow.

Without --token, a reset email is requested for --email. With --token and
--new-password, the reset is completed.`,
	RunE: runPasswordReset,
}

var deleteAccountForce bool

var accountDeleteCmd = &cobra.Command{
	Use:   "account-delete",
	Short: "Deactivate the account",
	Long: `Deactivate the account on the server and log out locally.

Examples:
  # Deactivate with interactive confirmation
  socialflow account-delete

  # Deactivate without prompting
  socialflow account-delete --force`,
	RunE: runAccountDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show account usage statistics",
	RunE:  runStats,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (or SOCIALFLOW_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email (required)")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "account username (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (or SOCIALFLOW_PASSWORD)")
	registerCmd.Flags().StringVar(&registerFullName, "full-name", "", "display name")
	registerCmd.Flags().StringVar(&registerRegion, "region", "", "regional profile: US or UK (default from config)")
	registerCmd.Flags().StringVar(&registerTimezone, "timezone", "", "IANA timezone (default from config)")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("username")

	whoamiCmd.Flags().BoolVar(&whoamiRemote, "remote", false, "refetch the account from the server")

	accountUpdateCmd.Flags().StringVar(&updateFullName, "full-name", "", "display name")
	accountUpdateCmd.Flags().StringVar(&updateRegion, "region", "", "regional profile: US or UK")
	accountUpdateCmd.Flags().StringVar(&updateTimezone, "timezone", "", "IANA timezone")

	passwordResetCmd.Flags().StringVar(&resetEmail, "email", "", "account email (required)")
	passwordResetCmd.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	passwordResetCmd.Flags().StringVar(&resetNewPassword, "new-password", "", "new password (with --token)")
	_ = passwordResetCmd.MarkFlagRequired("email")

	accountDeleteCmd.Flags().BoolVar(&deleteAccountForce, "force", false, "Skip confirmation prompt")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountUpdateCmd)
	rootCmd.AddCommand(passwordResetCmd)
	rootCmd.AddCommand(accountDeleteCmd)
	rootCmd.AddCommand(statsCmd)
}

// resolvePassword falls back to the SOCIALFLOW_PASSWORD env var so the
// password never has to appear in shell history.
func resolvePassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("SOCIALFLOW_PASSWORD"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no password: pass --password or set SOCIALFLOW_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := resolvePassword(loginPassword)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Auth.Login(cmd.Context(), loginEmail, password) {
		return storeFailure(c.Auth.Err())
	}

	user := c.Auth.User()
	fmt.Fprintf(os.Stderr, "Logged in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := resolvePassword(registerPassword)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	region := registerRegion
	if region == "" {
		region = c.Config().Defaults.Region
	}
	timezone := registerTimezone
	if timezone == "" {
		timezone = c.Config().Defaults.Timezone
	}

	req := api.RegisterRequest{
		Email:           registerEmail,
		Username:        registerUsername,
		FullName:        registerFullName,
		Password:        password,
		PreferredRegion: api.Region(region),
		Timezone:        timezone,
	}
	if !c.Auth.Register(cmd.Context(), req) {
		return storeFailure(c.Auth.Err())
	}

	user := c.Auth.User()
	fmt.Fprintf(os.Stderr, "Registered and logged in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	c.Auth.Logout(cmd.Context())
	fmt.Fprintln(os.Stderr, "Logged out.")
	return nil
}

func runAccountUpdate(cmd *cobra.Command, args []string) error {
	var update api.UserUpdate
	if updateFullName != "" {
		update.FullName = &updateFullName
	}
	if updateRegion != "" {
		region := api.Region(updateRegion)
		update.PreferredRegion = &region
	}
	if updateTimezone != "" {
		update.Timezone = &updateTimezone
	}
	if update.FullName == nil && update.PreferredRegion == nil && update.Timezone == nil {
		return fmt.Errorf("nothing to update: pass --full-name, --region, or --timezone")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Auth.UpdateMe(cmd.Context(), update) {
		return storeFailure(c.Auth.Err())
	}
	return printJSON(c.Auth.User())
}

func runPasswordReset(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	if resetToken == "" {
		if !c.Auth.RequestPasswordReset(cmd.Context(), resetEmail) {
			return storeFailure(c.Auth.Err())
		}
		fmt.Fprintln(os.Stderr, "Reset email requested. Re-run with --token and --new-password to complete.")
		return nil
	}

	if resetNewPassword == "" {
		return fmt.Errorf("no new password: pass --new-password with --token")
	}
	ok := c.Auth.ConfirmPasswordReset(cmd.Context(), api.PasswordResetConfirm{
		Email:       resetEmail,
		ResetToken:  resetToken,
		NewPassword: resetNewPassword,
	})
	if !ok {
		return storeFailure(c.Auth.Err())
	}
	fmt.Fprintln(os.Stderr, "Password reset. Log in with the new password.")
	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	if !deleteAccountForce {
		fmt.Fprint(os.Stderr, "Deactivate the account and log out? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Auth.DeleteAccount(cmd.Context()) {
		return storeFailure(c.Auth.Err())
	}
	fmt.Fprintln(os.Stderr, "Account deactivated and logged out.")
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	stats, ok := c.Auth.FetchStats(cmd.Context())
	if !ok {
		return storeFailure(c.Auth.Err())
	}
	return printJSON(stats)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	if whoamiRemote {
		if !c.Auth.FetchMe(cmd.Context()) {
			return storeFailure(c.Auth.Err())
		}
	}

	user := c.Auth.User()
	if user == nil {
		return fmt.Errorf("not logged in")
	}
	return printJSON(user)
}
