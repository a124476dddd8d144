package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
)

// statusView is what status renders
type statusView struct {
	Server        string     `json:"server" yaml:"server"`
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty"`
	Subject       string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired       bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
}

// NewStatusCmd creates the status command
func NewStatusCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server and login state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(deps, time.Now())
		},
	}
}

func runStatus(deps *Deps, now time.Time) error {
	user := deps.Session.User()
	view := statusView{
		Server:        deps.Session.BaseURL(),
		Authenticated: user.Authenticated,
		Email:         user.Email,
	}

	if user.Authenticated {
		// The token is opaque to the server contract; decoding is best-effort.
		if info, err := auth.DescribeToken(user.Token); err == nil {
			view.Subject = info.Subject
			if view.Email == "" {
				view.Email = info.Email
			}
			if !info.ExpiresAt.IsZero() {
				view.ExpiresAt = &info.ExpiresAt
			}
			view.Expired = info.Expired(now)
		} else {
			deps.Logger.Debug().Err(err).Msg("Could not decode token")
		}
	}

	return render(deps, view, func(w io.Writer) {
		fmt.Fprintf(w, "Server:\t%s\n", view.Server)
		if !view.Authenticated {
			fmt.Fprintf(w, "Logged in:\tno\n")
			return
		}
		fmt.Fprintf(w, "Logged in:\tyes\n")
		if view.Email != "" {
			fmt.Fprintf(w, "User:\t%s\n", view.Email)
		}
		if view.ExpiresAt != nil {
			state := "valid"
			if view.Expired {
				state = "expired"
			}
			fmt.Fprintf(w, "Token:\t%s until %s\n", state, view.ExpiresAt.Local().Format(time.RFC1123))
		}
	})
}
