package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/serverselect"
	"github.com/bookreview-dev/bookreview/internal/cli/userconfig"
)

// NewServerCmd creates the server command
func NewServerCmd(deps *Deps) *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt over the known servers will be shown.

Examples:
  $ bookreview server                                 # Interactive selection
  $ bookreview server https://books.example.com --alias prod
  $ bookreview server prod                            # Select by alias`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationNoSession: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runServer(deps, urlOrAlias, alias, serverselect.PromptServerSelection)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Short name to remember the server by")

	return cmd
}

// annotationNoSession marks commands that run without a session
const annotationNoSession = "bookreview/no-session"

// NeedsSession reports whether cmd expects the session to be wired
func NeedsSession(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationNoSession] != "true"
}

type serverPrompt func(*userconfig.UserConfig) (*userconfig.Server, error)

func runServer(deps *Deps, urlOrAlias, alias string, prompt serverPrompt) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	var server userconfig.Server

	if urlOrAlias != "" {
		if known, ok := cfg.FindServer(urlOrAlias); ok {
			server = *known
		} else {
			url, err := serverselect.NormalizeURL(urlOrAlias)
			if err != nil {
				return err
			}
			server = userconfig.Server{URL: url}
		}
	} else {
		// Show interactive selection
		selected, err := prompt(cfg)
		if err != nil {
			return err
		}
		server = *selected
	}
	if alias != "" {
		server.Alias = alias
	}

	// Save the selected server
	if err := userconfig.SetSelectedServer(server); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	if server.Alias != "" {
		fmt.Fprintf(deps.Out, "Selected server: %s (%s)\n", server.Alias, server.URL)
	} else {
		fmt.Fprintf(deps.Out, "Selected server: %s\n", server.URL)
	}
	return nil
}
