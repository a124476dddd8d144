package commands

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// NewSignupCmd creates the signup command
func NewSignupCmd(deps *Deps) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account on the book review server.

Missing values are prompted for. Signing up does not log you in;
run 'bookreview login' afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				if name, err = promptText("Name", validateRequired("name")); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptText("Email", validateEmail); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptSecret("Password"); err != nil {
					return err
				}
			}
			return runSignup(cmd.Context(), deps, name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runSignup(ctx context.Context, deps *Deps, name, email, password string) error {
	result := deps.Session.Signup(ctx, name, email, password)
	if !result.Success {
		return fmt.Errorf("signup failed: %s", result.Error)
	}

	fmt.Fprintln(deps.Out, "✓ Account created!")
	fmt.Fprintf(deps.Out, "  Log in with: bookreview login --email %s\n", email)
	return nil
}

func validateRequired(field string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(input string) error {
	if _, err := mail.ParseAddress(input); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

func promptText(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return value, nil
}

func promptSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: validateRequired("password"),
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return value, nil
}
