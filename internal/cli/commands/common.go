package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bookreview-dev/bookreview/internal/cli/client"
	"github.com/bookreview-dev/bookreview/internal/cli/session"
)

// Deps is the state shared by all commands. The root command fills it in
// before any RunE runs.
type Deps struct {
	Out     io.Writer
	Session *session.Manager
	Client  *client.Client
	Output  string // table, json, yaml
	Logger  zerolog.Logger
}

var errSessionExpired = errors.New("session expired, run 'bookreview login'")

// requireLogin gates commands that only make sense with a session
func requireLogin(deps *Deps) error {
	if !deps.Session.IsAuthenticated() {
		return client.ErrNotAuthenticated
	}
	return nil
}

// explain turns a session failure into something the user can act on
func explain(err error) error {
	if errors.Is(err, session.ErrAuthentication) {
		return errSessionExpired
	}
	var netErr *session.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("could not reach the server: %w", err)
	}
	return err
}

func parseBookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}
