package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/btanalysis/analysis"
)

// Trade sources.
const (
	SourceBacktest = "backtest"
	SourceSQLite   = "sqlite"
	SourceCSV      = "csv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BTA_"

// Config represents the analysis configuration
type Config struct {
	UserDataDir string `json:"user_data_dir" yaml:"user_data_dir"`
	Strategy    string `json:"strategy" yaml:"strategy"`
	Timeframe   string `json:"timeframe" yaml:"timeframe"`
	Pair        string `json:"pair,omitempty" yaml:"pair,omitempty"`

	Backtest     BacktestConfig     `json:"backtest" yaml:"backtest"`
	Trades       TradesConfig       `json:"trades" yaml:"trades"`
	Output       OutputConfig       `json:"output" yaml:"output"`
	Distribution DistributionConfig `json:"distribution" yaml:"distribution"`
	Log          LogConfig          `json:"log" yaml:"log"`
}

// BacktestConfig locates backtest result files
type BacktestConfig struct {
	// ResultsPath is a result file or a directory holding .last_result.json.
	// Empty means <user_data_dir>/backtest_results.
	ResultsPath string `json:"results_path,omitempty" yaml:"results_path,omitempty"`
}

// TradesConfig selects where trades for parallelism and summaries come from
type TradesConfig struct {
	Source  string `json:"source" yaml:"source"` // "backtest", "sqlite" or "csv"
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

// OutputConfig says where reports are written
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// DistributionConfig tunes the profit ratio histogram
type DistributionConfig struct {
	BinSize float64 `json:"bin_size" yaml:"bin_size"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// ResultsPath returns the configured results location.
func (c *Config) ResultsPath() string {
	if c.Backtest.ResultsPath != "" {
		return c.Backtest.ResultsPath
	}
	return filepath.Join(c.UserDataDir, "backtest_results")
}

// Period returns the timeframe as a duration.
func (c *Config) Period() (time.Duration, error) {
	return analysis.ParseTimeframe(c.Timeframe)
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays BTA_* settings. Values in envFile (a .env file, optional)
// are used for variables that are not set in the process environment.
func (c *Config) ApplyEnv(envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read env file: %w", err)
		}
		if vars != nil {
			fileVars = vars
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := fileVars[EnvPrefix+key]
		return v, ok
	}

	strs := map[string]*string{
		"USER_DATA_DIR": &c.UserDataDir,
		"STRATEGY":      &c.Strategy,
		"TIMEFRAME":     &c.Timeframe,
		"PAIR":          &c.Pair,
		"RESULTS_PATH":  &c.Backtest.ResultsPath,
		"TRADES_SOURCE": &c.Trades.Source,
		"DB_PATH":       &c.Trades.DBPath,
		"CSV_PATH":      &c.Trades.CSVPath,
		"OUTPUT_DIR":    &c.Output.Dir,
		"LOG_LEVEL":     &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("BIN_SIZE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sBIN_SIZE: %w", EnvPrefix, err)
		}
		c.Distribution.BinSize = f
	}
	if v, ok := lookup("LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_PRETTY: %w", EnvPrefix, err)
		}
		c.Log.Pretty = b
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if _, err := c.Period(); err != nil {
		return fmt.Errorf("timeframe: %w", err)
	}
	if c.Backtest.ResultsPath == "" && c.UserDataDir == "" {
		return fmt.Errorf("user_data_dir or backtest.results_path is required")
	}
	switch c.Trades.Source {
	case SourceBacktest:
	case SourceSQLite:
		if c.Trades.DBPath == "" {
			return fmt.Errorf("trades.db_path required for sqlite source")
		}
	case SourceCSV:
		if c.Trades.CSVPath == "" {
			return fmt.Errorf("trades.csv_path required for csv source")
		}
	default:
		return fmt.Errorf("trades.source must be 'backtest', 'sqlite' or 'csv'")
	}
	if c.Distribution.BinSize <= 0 {
		return fmt.Errorf("distribution.bin_size must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error", "off", "disabled":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		UserDataDir: "./user_data",
		Strategy:    "SampleStrategy",
		Timeframe:   "5m",
		Trades: TradesConfig{
			Source: SourceBacktest,
			DBPath: "./tradesv3.sqlite",
		},
		Output: OutputConfig{
			Dir: "./analysis",
		},
		Distribution: DistributionConfig{
			BinSize: 0.01,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
