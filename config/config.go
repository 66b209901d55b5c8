// Package config loads the settings of the pos command.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Quotes QuotesConfig `yaml:"quotes"`
	Log    LogConfig    `yaml:"log"`
}

// LedgerConfig controls where transactions are read from and written to.
type LedgerConfig struct {
	File string `yaml:"file"` // JSONL ledger, used when DSN is empty.
	DSN  string `yaml:"dsn"`  // SQLite database path, or ":memory:".
}

// QuotesConfig locates current prices for unrealized gains.
type QuotesConfig struct {
	URL      string `yaml:"url"`  // JSON document fetched over HTTP,
	File     string `yaml:"file"` // or read from disk.
	Path     string `yaml:"path"` // jsonpath with an {instrument} placeholder.
	Currency string `yaml:"currency"`
}

// LogConfig controls the format and level of logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML configuration file and the .env file if any. A missing
// configuration file is not an error. Environment variables override the
// file.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overrides values with environment variables when set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSITIONS_LEDGER"); v != "" {
		cfg.Ledger.File = v
	}
	if v := os.Getenv("POSITIONS_DSN"); v != "" {
		cfg.Ledger.DSN = v
	}
	if v := os.Getenv("POSITIONS_QUOTES_URL"); v != "" {
		cfg.Quotes.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Ledger.File == "" {
		cfg.Ledger.File = "transactions.jsonl"
	}
	if cfg.Quotes.Path == "" {
		cfg.Quotes.Path = "$.{instrument}"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// NewLogger creates a logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(w)
	switch c.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("config: unknown log format %q", c.Format)
	}
	return logger, nil
}
