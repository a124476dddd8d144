package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), deps)
		},
	}
}

func runLogout(ctx context.Context, deps *Deps) error {
	if !deps.Session.IsAuthenticated() {
		fmt.Fprintln(deps.Out, "Not logged in.")
		return nil
	}

	if err := deps.Session.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Fprintln(deps.Out, "✓ Logged out")
	return nil
}
