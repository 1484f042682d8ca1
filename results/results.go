// Package results loads backtest result files and hands their trades and
// daily profit series to the analysis package.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/btanalysis/analysis"
)

// LastResultFile names the marker that points at the newest result file when
// a results directory is given.
const LastResultFile = ".last_result.json"

var ErrStrategyNotFound = errors.New("strategy not found in backtest results")

// Results is one backtest result file.
type Results struct {
	Path       string
	Strategies map[string]*StrategyStats
	Comparison []StrategyComparison
}

// PairResult is a row of results_per_pair.
type PairResult struct {
	Key            string  `json:"key"`
	Trades         int     `json:"trades"`
	ProfitMean     float64 `json:"profit_mean"`
	ProfitSum      float64 `json:"profit_sum"`
	ProfitTotalAbs float64 `json:"profit_total_abs"`
	ProfitTotal    float64 `json:"profit_total"`
	DurationAvg    string  `json:"duration_avg"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
}

// StrategyComparison is a row of strategy_comparison.
type StrategyComparison struct {
	Key            string  `json:"key"`
	Trades         int     `json:"trades"`
	ProfitMean     float64 `json:"profit_mean"`
	ProfitTotalAbs float64 `json:"profit_total_abs"`
	ProfitTotal    float64 `json:"profit_total"`
	DurationAvg    string  `json:"duration_avg"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	MaxDrawdown    float64 `json:"max_drawdown_account"`
}

// StrategyStats is the per-strategy section of a result file.
type StrategyStats struct {
	Name string `json:"-"`

	Timeframe     string `json:"timeframe"`
	BacktestStart string `json:"backtest_start"`
	BacktestEnd   string `json:"backtest_end"`
	StakeCurrency string `json:"stake_currency"`
	MaxOpenTrades int    `json:"max_open_trades"`

	TotalTrades     int     `json:"total_trades"`
	StartingBalance float64 `json:"starting_balance"`
	FinalBalance    float64 `json:"final_balance"`
	ProfitTotalAbs  float64 `json:"profit_total_abs"`
	MarketChange    float64 `json:"market_change"`

	// Older files carry max_drawdown, newer ones max_drawdown_account.
	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownAccount float64 `json:"max_drawdown_account"`
	MaxDrawdownAbs     float64 `json:"max_drawdown_abs"`
	DrawdownStart      string  `json:"drawdown_start"`
	DrawdownEnd        string  `json:"drawdown_end"`

	Pairlist        []string         `json:"pairlist"`
	ResultsPerPair  []PairResult     `json:"results_per_pair"`
	TradeRecords    []TradeRecord    `json:"trades"`
	DailyProfitRows []DailyProfitRow `json:"daily_profit"`
}

// Drawdown returns the relative max drawdown, whichever field the file uses.
func (s *StrategyStats) Drawdown() float64 {
	if s.MaxDrawdownAccount != 0 {
		return s.MaxDrawdownAccount
	}
	return s.MaxDrawdown
}

// Trades converts the trade records into analysis trades.
func (s *StrategyStats) Trades() ([]analysis.Trade, error) {
	out := make([]analysis.Trade, 0, len(s.TradeRecords))
	for i, rec := range s.TradeRecords {
		t, err := rec.Trade()
		if err != nil {
			return nil, fmt.Errorf("strategy %s: trade %d: %w", s.Name, i, err)
		}
		if t.ID == "" {
			t.ID = strconv.Itoa(i + 1)
		}
		out = append(out, t)
	}
	return out, nil
}

// DailyProfit converts the daily_profit rows. Order is kept as found in the
// file; the equity builder checks it.
func (s *StrategyStats) DailyProfit() ([]analysis.DailyProfit, error) {
	out := make([]analysis.DailyProfit, 0, len(s.DailyProfitRows))
	for i, row := range s.DailyProfitRows {
		d, err := parseTime(row.Date)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: daily profit %d: %w", s.Name, i, err)
		}
		out = append(out, analysis.DailyProfit{Date: d, ProfitAbs: row.ProfitAbs})
	}
	return out, nil
}

type resultFile struct {
	Strategy   map[string]*StrategyStats `json:"strategy"`
	Comparison []StrategyComparison      `json:"strategy_comparison"`
}

type lastResult struct {
	LatestBacktest string `json:"latest_backtest"`
}

// Loader reads result files from disk.
type Loader struct {
	log zerolog.Logger
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log.With().Str("component", "results").Logger()}
}

// Load reads a result file. If path is a directory the file named by its
// .last_result.json is loaded.
func (l *Loader) Load(path string) (*Results, error) {
	file, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read backtest results: %w", err)
	}

	var rf resultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse backtest results %s: %w", file, err)
	}
	if len(rf.Strategy) == 0 {
		return nil, fmt.Errorf("backtest results %s: no strategies", file)
	}

	for name, s := range rf.Strategy {
		if s == nil {
			return nil, fmt.Errorf("backtest results %s: strategy %s is empty", file, name)
		}
		s.Name = name
		l.log.Debug().
			Str("strategy", name).
			Int("trades", len(s.TradeRecords)).
			Int("days", len(s.DailyProfitRows)).
			Msg("strategy loaded")
	}

	l.log.Info().Str("file", file).Int("strategies", len(rf.Strategy)).Msg("backtest results loaded")

	return &Results{
		Path:       file,
		Strategies: rf.Strategy,
		Comparison: rf.Comparison,
	}, nil
}

// ResolvePath maps a results directory to the newest result file in it.
// Files are returned unchanged.
func ResolvePath(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("backtest results: %w", err)
	}
	if !fi.IsDir() {
		return path, nil
	}

	data, err := os.ReadFile(filepath.Join(path, LastResultFile))
	if err != nil {
		return "", fmt.Errorf("directory %s has no %s: %w", path, LastResultFile, err)
	}
	var lr lastResult
	if err := json.Unmarshal(data, &lr); err != nil {
		return "", fmt.Errorf("parse %s: %w", LastResultFile, err)
	}
	if lr.LatestBacktest == "" {
		return "", fmt.Errorf("%s: latest_backtest is empty", LastResultFile)
	}
	return filepath.Join(path, lr.LatestBacktest), nil
}

// Strategy returns the stats of the named strategy.
func (r *Results) Strategy(name string) (*StrategyStats, error) {
	s, ok := r.Strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrStrategyNotFound, name, r.StrategyNames())
	}
	return s, nil
}

// StrategyNames lists the strategies in the file, sorted.
func (r *Results) StrategyNames() []string {
	names := make([]string, 0, len(r.Strategies))
	for n := range r.Strategies {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
