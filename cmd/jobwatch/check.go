package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobwatch/internal/config"
	"jobwatch/internal/notifier"
	"jobwatch/internal/runner"
	"jobwatch/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Sweep once, print matches, mark nothing",
	Long:  "Dry run: fetches every configured board and prints matched jobs to the log. Nothing is marked seen and no webhook is called.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	logger.Info("check mode: nothing will be marked seen or delivered")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	fetchers := buildFetchers(companies, buildMatcher(cfg), httpClient, logger)

	stats := runner.New(fetchers, store.NewNopStore(), notifier.NewLogNotifier(logger), 0, logger).Run(ctx)

	logger.Info("check complete", "matched", stats.New)
	return nil
}
