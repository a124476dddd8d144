package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
	"github.com/bookreview-dev/bookreview/internal/cli/client"
	"github.com/bookreview-dev/bookreview/internal/cli/commands"
	"github.com/bookreview-dev/bookreview/internal/cli/serverselect"
	"github.com/bookreview-dev/bookreview/internal/cli/session"
	"github.com/bookreview-dev/bookreview/internal/config"
	"github.com/bookreview-dev/bookreview/internal/logger"
)

var version = "dev" // Will be set during build

var (
	deps       = &commands.Deps{Out: os.Stdout}
	tokenStore auth.TokenStore

	serverFlag   string
	outputFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "bookreview",
	Short: "Bookreview - browse, rate and review books",
	Long: `Bookreview CLI - a terminal client for the book review service.

Browse the catalog, read and write reviews, keep favourites and get
recommendations. Credentials are kept in the system keyring by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	// Parent hooks run before the login gates of the review and fav groups
	cobra.EnableTraverseRunHooks = true

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL or alias (overrides the selected server)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides LOG_LEVEL)")

	// Add all subcommands
	rootCmd.AddCommand(commands.NewVersionCmd(deps, version))
	rootCmd.AddCommand(commands.NewLoginCmd(deps))
	rootCmd.AddCommand(commands.NewSignupCmd(deps))
	rootCmd.AddCommand(commands.NewLogoutCmd(deps))
	rootCmd.AddCommand(commands.NewStatusCmd(deps))
	rootCmd.AddCommand(commands.NewBooksCmd(deps))
	rootCmd.AddCommand(commands.NewBookCmd(deps))
	rootCmd.AddCommand(commands.NewReviewCmd(deps))
	rootCmd.AddCommand(commands.NewFavCmd(deps))
	rootCmd.AddCommand(commands.NewRecommendCmd(deps))
	rootCmd.AddCommand(commands.NewImportCmd(deps))
	rootCmd.AddCommand(commands.NewServerCmd(deps))
}

// setup builds the session context once per invocation and hands it to the
// commands through deps.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger.Init(level, cfg.Logging.Format)
	deps.Logger = logger.GetLogger()
	deps.Output = outputFlag

	if !commands.NeedsSession(cmd) {
		return nil
	}

	serverURL, err := serverselect.ResolveServer(serverFlag, cfg.API.URL)
	if err != nil {
		return err
	}

	store, err := auth.Open(cfg.Storage.TokenStore, cfg.Storage.DataDir, serverURL)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	tokenStore = store

	manager := session.New(store,
		session.WithBaseURL(serverURL),
		session.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		session.WithLogger(deps.Logger),
		session.WithInvalidationHook(func() {
			deps.Logger.Info().Str("server", serverURL).Msg("Server rejected the stored token")
		}),
	)
	if err := manager.Initialize(); err != nil {
		return err
	}

	deps.Session = manager
	deps.Client = client.New(manager)
	deps.Client.SetLogger(deps.Logger)
	return nil
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// cobra skips post-run hooks when RunE fails, so the store is closed here
	err := rootCmd.ExecuteContext(ctx)
	closeTokenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func closeTokenStore() {
	if tokenStore == nil {
		return
	}
	if err := auth.Close(tokenStore); err != nil {
		deps.Logger.Warn().Err(err).Msg("Failed to close token store")
	}
	tokenStore = nil
}
