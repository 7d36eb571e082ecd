package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a watcher run. Every field has a
// working default so the tool runs with no config file at all.
type Config struct {
	CompaniesFile string
	HTTP          HTTPConfig
	Filters       FilterConfig
	State         StateConfig
	Notification  NotificationConfig
}

// HTTPConfig controls the shared HTTP client used for provider APIs and
// the webhook.
type HTTPConfig struct {
	Timeout time.Duration
}

// FilterConfig holds keyword matcher settings.
type FilterConfig struct {
	TitleKeywords    []string
	LocationEnabled  bool
	Locations        []string
	ExcludeLocations []string
}

// StateConfig selects and tunes the seen-signature store.
type StateConfig struct {
	Backend   string        // "file", "sqlite" or "redis"
	Path      string        // file path for the file and sqlite backends
	RedisURL  string        // required for the redis backend
	Retention time.Duration // drop signatures older than this; 0 keeps forever
}

// NotificationConfig controls which notifier is used and how batches are
// shaped and paced.
type NotificationConfig struct {
	Type       string        // "discord" or "log"
	Format     string        // "embed" or "text"
	WebhookURL string
	MaxBatch   int           // jobs per webhook request
	BatchPause time.Duration // gap between webhook requests
}

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Notifier types and payload formats.
const (
	NotifierDiscord = "discord"
	NotifierLog     = "log"
	FormatEmbed     = "embed"
	FormatText      = "text"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	CompaniesFile string          `yaml:"companies_file"`
	HTTP          rawHTTPConfig   `yaml:"http"`
	Filters       rawFilterConfig `yaml:"filters"`
	State         rawStateConfig  `yaml:"state"`
	Notification  rawNotifyConfig `yaml:"notification"`
}

type rawHTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

type rawFilterConfig struct {
	TitleKeywords    []string `yaml:"title_keywords"`
	LocationEnabled  *bool    `yaml:"location_enabled"`
	Locations        []string `yaml:"locations"`
	ExcludeLocations []string `yaml:"exclude_locations"`
}

type rawStateConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	RedisURL  string `yaml:"redis_url"`
	Retention string `yaml:"retention"`
}

type rawNotifyConfig struct {
	Type       string  `yaml:"type"`
	Format     string  `yaml:"format"`
	WebhookURL *string `yaml:"webhook_url"`
	MaxBatch   int     `yaml:"max_batch"`
	BatchPause string  `yaml:"batch_pause"`
}

// Default returns the built-in configuration: file-backed state next to
// the binary, Discord embeds fed by the WEBHOOK_URL env var, and keyword
// defaults tuned for entry-level roles in Indian engineering hubs.
func Default() *Config {
	return &Config{
		CompaniesFile: "companies.json",
		HTTP: HTTPConfig{
			Timeout: 20 * time.Second,
		},
		Filters: FilterConfig{
			TitleKeywords: []string{
				"new grad", "graduate", "entry", "fresher", "sde 1", "sde i",
				"software engineer i", "intern", "associate software engineer",
				"early-career", "entry level", "junior",
			},
			LocationEnabled: true,
			Locations: []string{
				"india", "bangalore", "bengaluru", "hyderabad", "pune",
				"chennai", "mumbai", "delhi", "noida", "gurgaon", "gurugram",
			},
			ExcludeLocations: []string{"remote", "global", "anywhere"},
		},
		State: StateConfig{
			Backend:   BackendFile,
			Path:      "seen.json",
			Retention: 0,
		},
		Notification: NotificationConfig{
			Type:       NotifierDiscord,
			Format:     FormatEmbed,
			WebhookURL: os.Getenv("WEBHOOK_URL"),
			MaxBatch:   6,
			BatchPause: 1200 * time.Millisecond,
		},
	}
}

// Load reads the YAML config at path and merges it over the defaults.
// A missing file is not an error: the defaults are returned so the tool
// runs zero-config. Env var references in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if raw.CompaniesFile != "" {
		cfg.CompaniesFile = raw.CompaniesFile
	}

	if raw.HTTP.Timeout != "" {
		d, err := time.ParseDuration(raw.HTTP.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse http.timeout %q: %w", raw.HTTP.Timeout, err)
		}
		cfg.HTTP.Timeout = d
	}

	if raw.Filters.TitleKeywords != nil {
		cfg.Filters.TitleKeywords = raw.Filters.TitleKeywords
	}
	if raw.Filters.LocationEnabled != nil {
		cfg.Filters.LocationEnabled = *raw.Filters.LocationEnabled
	}
	if raw.Filters.Locations != nil {
		cfg.Filters.Locations = raw.Filters.Locations
	}
	if raw.Filters.ExcludeLocations != nil {
		cfg.Filters.ExcludeLocations = raw.Filters.ExcludeLocations
	}

	if raw.State.Backend != "" {
		cfg.State.Backend = raw.State.Backend
	}
	if raw.State.Path != "" {
		cfg.State.Path = raw.State.Path
	} else if cfg.State.Backend == BackendSQLite {
		cfg.State.Path = "seen.db"
	}
	cfg.State.RedisURL = raw.State.RedisURL
	if raw.State.Retention != "" {
		d, err := time.ParseDuration(raw.State.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse state.retention %q: %w", raw.State.Retention, err)
		}
		cfg.State.Retention = d
	}

	if raw.Notification.Type != "" {
		cfg.Notification.Type = raw.Notification.Type
	}
	if raw.Notification.Format != "" {
		cfg.Notification.Format = raw.Notification.Format
	}
	if raw.Notification.WebhookURL != nil {
		cfg.Notification.WebhookURL = *raw.Notification.WebhookURL
	}
	if raw.Notification.MaxBatch != 0 {
		cfg.Notification.MaxBatch = raw.Notification.MaxBatch
	}
	if raw.Notification.BatchPause != "" {
		d, err := time.ParseDuration(raw.Notification.BatchPause)
		if err != nil {
			return nil, fmt.Errorf("parse notification.batch_pause %q: %w", raw.Notification.BatchPause, err)
		}
		cfg.Notification.BatchPause = d
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.State.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("state.backend must be %q, %q or %q, got %q",
			BackendFile, BackendSQLite, BackendRedis, cfg.State.Backend)
	}
	if cfg.State.Backend == BackendRedis && cfg.State.RedisURL == "" {
		return fmt.Errorf("state.redis_url is required when state.backend is %q", BackendRedis)
	}
	if cfg.State.Retention < 0 {
		return fmt.Errorf("state.retention must not be negative, got %v", cfg.State.Retention)
	}

	switch cfg.Notification.Type {
	case NotifierDiscord, NotifierLog:
	default:
		return fmt.Errorf("notification.type must be %q or %q, got %q",
			NotifierDiscord, NotifierLog, cfg.Notification.Type)
	}
	switch cfg.Notification.Format {
	case FormatEmbed, FormatText:
	default:
		return fmt.Errorf("notification.format must be %q or %q, got %q",
			FormatEmbed, FormatText, cfg.Notification.Format)
	}
	if cfg.Notification.MaxBatch < 1 {
		return fmt.Errorf("notification.max_batch must be at least 1, got %d", cfg.Notification.MaxBatch)
	}
	if cfg.Notification.BatchPause < 0 {
		return fmt.Errorf("notification.batch_pause must not be negative, got %v", cfg.Notification.BatchPause)
	}

	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}

	return nil
}
