package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"jobwatch/internal/adapter"
	"jobwatch/internal/config"
	"jobwatch/internal/filter"
	"jobwatch/internal/model"
	"jobwatch/internal/notifier"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Job board watcher — new entry-level postings, straight to your webhook",
	Long:  "Jobwatch sweeps Greenhouse, Lever and Workday boards once and posts unseen matching roles to a Discord webhook. Invoke it from cron or a systemd timer.",
	// Default to `run` so that `jobwatch` with no args performs one sweep.
	// Timer units invoke the binary directly.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func buildMatcher(cfg *config.Config) *filter.KeywordMatcher {
	return filter.NewKeywordMatcher(
		cfg.Filters.TitleKeywords,
		cfg.Filters.Locations,
		cfg.Filters.ExcludeLocations,
		cfg.Filters.LocationEnabled,
	)
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case config.NotifierDiscord:
		return notifier.NewDiscordNotifier(
			cfg.Notification.WebhookURL,
			cfg.Notification.Format,
			cfg.Notification.MaxBatch,
			cfg.Notification.BatchPause,
			httpClient,
			logger,
		)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildFetchers wires one adapter per provider that has boards configured,
// in the fixed sweep order: greenhouse, lever, workday.
func buildFetchers(companies config.Companies, matcher model.Matcher, httpClient *http.Client, logger *slog.Logger) []model.JobFetcher {
	var fetchers []model.JobFetcher
	if len(companies.Greenhouse) > 0 {
		fetchers = append(fetchers, adapter.NewGreenhouseAdapter(companies.Greenhouse, matcher, httpClient, logger))
	}
	if len(companies.Lever) > 0 {
		fetchers = append(fetchers, adapter.NewLeverAdapter(companies.Lever, matcher, httpClient, logger))
	}
	if len(companies.Workday) > 0 {
		boards := make([]adapter.WorkdayBoard, len(companies.Workday))
		for i, w := range companies.Workday {
			boards[i] = adapter.WorkdayBoard{Name: w.Name, URL: w.URL}
		}
		fetchers = append(fetchers, adapter.NewWorkdayAdapter(boards, matcher, httpClient, logger))
	}
	return fetchers
}
