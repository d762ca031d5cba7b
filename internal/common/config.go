package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Claude      ClaudeConfig    `toml:"claude"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Workers     WorkersConfig   `toml:"workers"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ScraperConfig contains defaults applied when a scrape request omits them
type ScraperConfig struct {
	UserAgent         string        `toml:"user_agent"`          // User agent sent on every fetch
	DefaultDelay      time.Duration `toml:"default_delay"`       // Courtesy delay after each fetch
	DefaultTimeout    time.Duration `toml:"default_timeout"`     // Per-request timeout
	DefaultMaxRetries int           `toml:"default_max_retries"` // Retry attempts for transient failures
	MaxArticlesLimit  int           `toml:"max_articles_limit"`  // Hard cap on articles per run
}

// ClaudeConfig contains Anthropic API configuration for the summarizer
type ClaudeConfig struct {
	APIKey        string  `toml:"api_key"` // Falls back to ANTHROPIC_API_KEY env var
	Model         string  `toml:"model"`
	Timeout       string  `toml:"timeout"` // e.g., "60s"
	MaxTokens     int     `toml:"max_tokens"`
	Temperature   float32 `toml:"temperature"`
	MaxInputChars int     `toml:"max_input_chars"` // Input truncation ceiling before API call
}

// SchedulerConfig controls the recurring scrape-all job
type SchedulerConfig struct {
	Enabled     bool   `toml:"enabled"`
	Schedule    string `toml:"schedule"`     // Cron expression
	MaxArticles int    `toml:"max_articles"` // Articles per source per scheduled run
}

type WorkersConfig struct {
	Count int `toml:"count"` // Task worker pool size
}

// DefaultConfig returns configuration defaults applied before file/env loading
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/medwire",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Scraper: ScraperConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			DefaultDelay:      time.Second,
			DefaultTimeout:    30 * time.Second,
			DefaultMaxRetries: 3,
			MaxArticlesLimit:  100,
		},
		Claude: ClaudeConfig{
			Model:         "claude-sonnet-4-20250514",
			Timeout:       "60s",
			MaxTokens:     1024,
			Temperature:   0.3,
			MaxInputChars: 12000,
		},
		Scheduler: SchedulerConfig{
			Enabled:     false,
			Schedule:    "0 */6 * * *", // Every 6 hours
			MaxArticles: 10,
		},
		Workers: WorkersConfig{
			Count: 4,
		},
	}
}

// LoadFromFile loads configuration from a TOML file over defaults,
// then applies environment variable overrides.
// An empty path skips the file step and returns defaults + env.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies MEDWIRE_* environment variables over loaded config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDWIRE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MEDWIRE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MEDWIRE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MEDWIRE_BADGER_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
	if v := os.Getenv("MEDWIRE_CLAUDE_API_KEY"); v != "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("MEDWIRE_SCHEDULER_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Scheduler.Enabled = enabled
		}
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime failures
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Badger.Path == "" {
		return fmt.Errorf("storage.badger.path is required")
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1")
	}
	if c.Scraper.DefaultMaxRetries < 0 {
		return fmt.Errorf("scraper.default_max_retries cannot be negative")
	}
	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler.schedule %q: %w", c.Scheduler.Schedule, err)
		}
	}
	return nil
}
