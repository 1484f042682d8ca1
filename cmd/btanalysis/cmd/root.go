package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/config"
	"github.com/rustyeddy/btanalysis/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "btanalysis",
	Short: "Analyse the output of a strategy backtest",
	Long: `btanalysis derives analytics from backtest results and trade databases.

It provides tools for:
  - Building the daily equity curve of a strategy
  - Counting concurrently open trades to tune max_open_trades
  - Summarising trades per pair and exit reason
  - Showing the profit ratio distribution
  - Printing strategy statistics and comparisons

Settings come from a YAML/JSON config file, a .env file and BTA_* variables,
in increasing order of precedence, and finally from flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	cfgFile      string
	envFile      string
	logLevel     string
	strategyFlag string
	timeframe    string
	resultsPath  string
	pairFlag     string

	cfg *config.Config
	log = zerolog.Nop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	pf.StringVar(&envFile, "env", ".env", "optional .env file with BTA_* settings")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&strategyFlag, "strategy", "s", "", "strategy name in the backtest results")
	pf.StringVarP(&timeframe, "timeframe", "t", "", "candle timeframe, e.g. 5m or 1h")
	pf.StringVarP(&resultsPath, "results", "r", "", "backtest result file or directory")
	pf.StringVarP(&pairFlag, "pair", "p", "", "restrict trades to one pair")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c = loaded
	}
	if err := c.ApplyEnv(envFile); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if strategyFlag != "" {
		c.Strategy = strategyFlag
	}
	if timeframe != "" {
		c.Timeframe = timeframe
	}
	if resultsPath != "" {
		c.Backtest.ResultsPath = resultsPath
	}
	if pairFlag != "" {
		c.Pair = pairFlag
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	cfg = c
	log = logger.New(logger.Config{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(log)
	return nil
}
