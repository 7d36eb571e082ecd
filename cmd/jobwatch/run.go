package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobwatch/internal/config"
	"jobwatch/internal/model"
	"jobwatch/internal/runner"
	"jobwatch/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep all boards once and notify new matches",
	Long:  "One sweep: fetch every configured board, dedup against the seen store, deliver new matches, persist state, exit.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		logger.Warn("failed to load companies, nothing to do", "path", cfg.CompaniesFile, "error", err)
		return nil
	}
	if companies.Empty() {
		logger.Info("no boards configured, nothing to do", "path", cfg.CompaniesFile)
		return nil
	}

	logger.Info("config loaded",
		"boards", companies.Total(),
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"location_filter", cfg.Filters.LocationEnabled,
		"state_backend", cfg.State.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			logger.Info("another run holds the state lock, skipping this sweep")
			return nil
		}
		// Sweeping without dedup state would re-notify everything, so skip.
		logger.Error("failed to open seen store, skipping this sweep", "error", err)
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	n := setupNotifier(cfg, httpClient, logger)
	fetchers := buildFetchers(companies, buildMatcher(cfg), httpClient, logger)

	runner.New(fetchers, st, n, cfg.State.Retention, logger).Run(ctx)

	// Closing the file store is what persists seen.json; a failure here is
	// the one error that escapes as a non-zero exit.
	if err := st.Close(); err != nil {
		logger.Error("failed to persist seen state", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

// openStore builds the configured seen-store backend.
func openStore(ctx context.Context, cfg *config.Config) (model.SeenStore, error) {
	switch cfg.State.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.State.Path)
	case config.BackendRedis:
		return store.NewRedisStore(ctx, cfg.State.RedisURL, cfg.State.Retention)
	default:
		return store.NewFileStore(cfg.State.Path)
	}
}
