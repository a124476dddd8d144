package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd(deps *Deps) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the book review server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for environment variables (useful for CI/CD)
			if email == "" {
				email = os.Getenv("BOOKREVIEW_EMAIL")
			}
			if password == "" {
				password = os.Getenv("BOOKREVIEW_PASSWORD")
			}

			if email == "" {
				return fmt.Errorf("email is required (use --email flag or BOOKREVIEW_EMAIL env var)")
			}

			// Prompt for password if not provided via flag or env var
			if password == "" {
				p, err := readPassword(deps)
				if err != nil {
					return err
				}
				password = p
			}

			return runLogin(cmd.Context(), deps, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BOOKREVIEW_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BOOKREVIEW_PASSWORD, will prompt if not provided)")

	return cmd
}

func readPassword(deps *Deps) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or BOOKREVIEW_PASSWORD env var)")
	}

	fmt.Fprint(deps.Out, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(deps.Out) // New line after password input
	return string(bytePassword), nil
}

func runLogin(ctx context.Context, deps *Deps, email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	fmt.Fprintf(deps.Out, "Logging in to %s...\n", deps.Session.BaseURL())

	result := deps.Session.Login(ctx, email, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}

	fmt.Fprintln(deps.Out, "✓ Login successful!")
	fmt.Fprintf(deps.Out, "  User: %s\n", email)
	return nil
}
