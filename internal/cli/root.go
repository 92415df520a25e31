/*
Package cli implements the workflow-hub command line.

Every command resolves configuration the same way: .env files, then the
JSON config file (--config or ~/.workflow-hub.json), then WORKFLOW_HUB_*
environment overrides. Command output goes to stdout; logs go to stderr.
*/
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/config"
	"github.com/khanglvm/workflow-hub/internal/logger"
	"github.com/khanglvm/workflow-hub/internal/search"
	"github.com/khanglvm/workflow-hub/internal/storage"
	"github.com/khanglvm/workflow-hub/internal/storage/postgres"
	"github.com/khanglvm/workflow-hub/internal/version"
)

// NewRootCmd assembles the workflow-hub command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "workflow-hub",
		Short: "Relevance-ranked search over shared workflows",
		Long: `workflow-hub stores shared workflow documents and answers natural-language
searches with ranked results, each carrying a relevance score and a short
explanation of why it matched.

Searches are available from the command line, over MCP (stdio) for AI
clients, and over an HTTP JSON API.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.workflow-hub.json)")

	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewAddCmd())
	rootCmd.AddCommand(NewImportCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewRemoveCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewServeHTTPCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewAnalyticsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// configPath returns the --config value or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.GetDefaultConfigPath()
}

// loadConfig resolves configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}

	path, err := configPath(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// runtime bundles what most commands need: config, logger and an open store.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  storage.Storage
}

// setup loads config, installs the global logger and opens the store.
func setup(cmd *cobra.Command) (*runtime, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	l := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Logger = l

	store, err := openStore(cmd.Context(), cfg, &l)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, logger: l, store: store}, nil
}

// Close releases the store.
func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to close storage")
	}
}

// searchService builds a search service over the runtime store.
func (r *runtime) searchService() (*search.Service, error) {
	return search.NewService(r.store, search.Config{
		DefaultLimit: r.cfg.Search.DefaultLimit,
		MaxLimit:     r.cfg.Search.MaxLimit,
	}, &r.logger)
}

// openStore opens and migrates the configured storage backend.
func openStore(ctx context.Context, cfg *config.Config, l *zerolog.Logger) (storage.Storage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.Storage.PostgresDSN, l)
		if err != nil {
			return nil, err
		}
		if err := store.Init(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		store := storage.NewStorage(cfg.Storage.Path, l)
		if err := store.Init(); err != nil {
			return nil, fmt.Errorf("failed to open workflow database: %w", err)
		}
		return store, nil
	}
}
