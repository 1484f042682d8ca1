package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "5m", cfg.Timeframe)
	assert.Equal(t, SourceBacktest, cfg.Trades.Source)
	assert.Equal(t, 0.01, cfg.Distribution.BinSize)
	assert.Equal(t, filepath.Join("user_data", "backtest_results"), cfg.ResultsPath())
	assert.NoError(t, cfg.Validate())

	p, err := cfg.Period()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, p)
}

func TestResultsPathOverride(t *testing.T) {
	cfg := Default()
	cfg.Backtest.ResultsPath = "/tmp/result.json"
	assert.Equal(t, "/tmp/result.json", cfg.ResultsPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing strategy", func(c *Config) { c.Strategy = "" }, "strategy is required"},
		{"bad timeframe", func(c *Config) { c.Timeframe = "5x" }, "timeframe"},
		{"no results location", func(c *Config) { c.UserDataDir = "" }, "user_data_dir or backtest.results_path"},
		{"results path only", func(c *Config) { c.UserDataDir = ""; c.Backtest.ResultsPath = "r.json" }, ""},
		{"unknown source", func(c *Config) { c.Trades.Source = "redis" }, "trades.source must be"},
		{"sqlite without db", func(c *Config) { c.Trades.Source = SourceSQLite; c.Trades.DBPath = "" }, "trades.db_path required"},
		{"csv without path", func(c *Config) { c.Trades.Source = SourceCSV }, "trades.csv_path required"},
		{"csv with path", func(c *Config) { c.Trades.Source = SourceCSV; c.Trades.CSVPath = "t.csv" }, ""},
		{"zero bin size", func(c *Config) { c.Distribution.BinSize = 0 }, "bin_size must be positive"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Strategy = "MyStrategy"
			cfg.Pair = "ETH/USDT"
			cfg.Trades = TradesConfig{Source: SourceSQLite, DBPath: "trades.sqlite"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: Other\ntimeframe: 1h\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Other", cfg.Strategy)
	assert.Equal(t, "1h", cfg.Timeframe)
	assert.Equal(t, 0.01, cfg.Distribution.BinSize)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeframe: 7q\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BTA_STRATEGY=FromFile\nBTA_PAIR=BTC/USDT\nBTA_BIN_SIZE=0.05\n"), 0644))

	t.Setenv("BTA_PAIR", "ETH/USDT")
	t.Setenv("BTA_LOG_PRETTY", "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, "FromFile", cfg.Strategy)
	assert.Equal(t, "ETH/USDT", cfg.Pair)
	assert.Equal(t, 0.05, cfg.Distribution.BinSize)
	assert.True(t, cfg.Log.Pretty)
}

func TestApplyEnvMissingFileAndBadValues(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))

	t.Setenv("BTA_BIN_SIZE", "wide")
	assert.ErrorContains(t, cfg.ApplyEnv(""), "BTA_BIN_SIZE")
}
