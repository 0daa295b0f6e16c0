package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/banban-dev/banban/internal/cli/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a ban:ban server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password, globalOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BANBAN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BANBAN_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var email, password, nickname string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a ban:ban account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd.Context(), email, password, nickname, globalOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BANBAN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BANBAN_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Name shown on your posts")

	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session for the selected server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), globalOptions(cmd)...)
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the stored session belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), globalOptions(cmd)...)
		},
	}
}

// credentials fills email and password from env vars and, for the password,
// an interactive prompt
func credentials(email, password string) (string, string, error) {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("BANBAN_EMAIL")
	}
	if password == "" {
		password = os.Getenv("BANBAN_PASSWORD")
	}

	if email == "" {
		return "", "", fmt.Errorf("email is required (use --email flag or BANBAN_EMAIL env var)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or BANBAN_PASSWORD env var)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Println()
	}

	return email, password, nil
}

func runLogin(ctx context.Context, email, password string, opts ...Option) error {
	email, password, err := credentials(email, password)
	if err != nil {
		return err
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Logging in to %s (%s)...\n", e.server.Alias, e.server.URL)

	store := e.store()
	if err := store.Login(ctx, email, password); err != nil {
		return err
	}

	user := store.Snapshot().User
	fmt.Fprintln(e.out, "✓ Login successful!")
	fmt.Fprintf(e.out, "  User: %s (%s)\n", user.Nickname, user.Email)
	if user.IsAdmin {
		fmt.Fprintln(e.out, "  Role: Admin")
	}

	return nil
}

func runSignup(ctx context.Context, email, password, nickname string, opts ...Option) error {
	if nickname == "" {
		return fmt.Errorf("nickname is required (use --nickname flag)")
	}

	email, password, err := credentials(email, password)
	if err != nil {
		return err
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	store := e.store()
	if err := store.Signup(ctx, email, password, nickname); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Welcome to ban:ban, %s!\n", store.Snapshot().User.Nickname)
	return nil
}

func runLogout(ctx context.Context, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	if err := e.store().Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Logged out of %s\n", e.server.Alias)
	return nil
}

func runWhoami(ctx context.Context, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	store := e.store()
	if err := store.Check(ctx, session.PolicySurface); err != nil {
		return err
	}

	user := store.Snapshot().User
	fmt.Fprintf(e.out, "%s (%s) on %s\n", user.Nickname, user.Email, e.server.Alias)
	return nil
}
