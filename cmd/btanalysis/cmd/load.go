package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/config"
	"github.com/rustyeddy/btanalysis/journal"
	"github.com/rustyeddy/btanalysis/results"
)

func loadResults() (*results.Results, error) {
	res, err := results.NewLoader(log).Load(cfg.ResultsPath())
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return res, nil
}

func loadStrategy() (*results.Results, *results.StrategyStats, error) {
	res, err := loadResults()
	if err != nil {
		return nil, nil, err
	}
	s, err := res.Strategy(cfg.Strategy)
	if err != nil {
		return nil, nil, err
	}
	return res, s, nil
}

// loadTrades reads trades from the configured source and applies the pair
// filter. It returns a short description of the source.
func loadTrades(ctx context.Context) ([]analysis.Trade, string, error) {
	var (
		trades []analysis.Trade
		desc   string
		err    error
	)

	switch cfg.Trades.Source {
	case config.SourceSQLite:
		desc = "sqlite:" + cfg.Trades.DBPath
		trades, err = loadFromSource(ctx, func() (journal.Source, io.Closer, error) {
			j, err := journal.OpenSQLite(cfg.Trades.DBPath)
			return j, j, err
		})
	case config.SourceCSV:
		desc = "csv:" + cfg.Trades.CSVPath
		trades, err = journal.CSVSource{Path: cfg.Trades.CSVPath}.LoadTrades(ctx)
	default:
		var s *results.StrategyStats
		_, s, err = loadStrategy()
		if err == nil {
			desc = "backtest:" + cfg.Strategy
			trades, err = s.Trades()
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("load trades: %w", err)
	}

	if cfg.Pair != "" {
		trades = analysis.FilterPair(trades, cfg.Pair)
	}
	log.Info().Str("source", desc).Str("pair", cfg.Pair).Int("trades", len(trades)).Msg("trades loaded")
	return trades, desc, nil
}

func loadFromSource(ctx context.Context, open func() (journal.Source, io.Closer, error)) ([]analysis.Trade, error) {
	src, closer, err := open()
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return src.LoadTrades(ctx)
}

// writeOutput runs write against out and closes it, reporting the first
// error including one from Close.
func writeOutput(out io.WriteCloser, write func(io.Writer) error) error {
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput opens path for writing, or returns stdout when path is empty
// or "-".
func createOutput(stdout io.Writer, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
