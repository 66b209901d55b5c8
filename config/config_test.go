package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/positions/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the overrides so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"POSITIONS_LEDGER", "POSITIONS_DSN", "POSITIONS_QUOTES_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir()) // no .env
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ledger:
  dsn: positions.db
quotes:
  url: https://example.com/quotes.json
  path: $.quotes.{instrument}.last
  currency: EUR
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "positions.db", cfg.Ledger.DSN)
	assert.Equal(t, "transactions.jsonl", cfg.Ledger.File)
	assert.Equal(t, "https://example.com/quotes.json", cfg.Quotes.URL)
	assert.Equal(t, "$.quotes.{instrument}.last", cfg.Quotes.Path)
	assert.Equal(t, "EUR", cfg.Quotes.Currency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "transactions.jsonl", cfg.Ledger.File)
	assert.Empty(t, cfg.Ledger.DSN)
	assert.Equal(t, "$.{instrument}", cfg.Quotes.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  file: a.jsonl\nlog:\n  level: warn\n"), 0o644))

	t.Setenv("POSITIONS_LEDGER", "b.jsonl")
	t.Setenv("POSITIONS_DSN", ":memory:")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "b.jsonl", cfg.Ledger.File)
	assert.Equal(t, ":memory:", cfg.Ledger.DSN)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.WithField("instrument", "ARS").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"instrument":"ARS"`)

	_, err = config.LogConfig{Level: "loud", Format: "text"}.NewLogger(&buf)
	assert.Error(t, err)
	_, err = config.LogConfig{Level: "info", Format: "xml"}.NewLogger(&buf)
	assert.Error(t, err)
}
