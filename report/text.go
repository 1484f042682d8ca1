package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/results"
)

const rule = "--------------------------------------------------"

func banner(w io.Writer, title string) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

// WriteGroupCounts prints one line per group.
func WriteGroupCounts(w io.Writer, title string, groups []analysis.GroupCount) {
	section(w, title)
	if len(groups) == 0 {
		fmt.Fprintln(w, "(no trades)")
		return
	}
	fmt.Fprintf(w, "%-20s %6s %12s %10s\n", "Key", "Trades", "Profit Abs", "Avg %")
	for _, g := range groups {
		fmt.Fprintf(w, "%-20s %6d %12.2f %10.2f\n", label(g.Key), g.Count, g.ProfitAbs, g.MeanProfitRatio()*100)
	}
}

// WritePairReasonCounts prints the exit reason counts of every pair.
func WritePairReasonCounts(w io.Writer, rows []analysis.PairReasonCount) {
	section(w, "Exit Reasons per Pair")
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no trades)")
		return
	}
	prev := ""
	for i, r := range rows {
		pair := ""
		if i == 0 || r.Pair != prev {
			pair = r.Pair
		}
		prev = r.Pair
		fmt.Fprintf(w, "%-20s %-20s %6d\n", pair, label(r.Reason), r.Count)
	}
}

// WriteDistribution prints the profit ratio histogram.
func WriteDistribution(w io.Writer, d analysis.Distribution) {
	section(w, "Profit Ratio Distribution")
	if d.Count == 0 {
		fmt.Fprintln(w, "(no closed trades)")
		return
	}
	fmt.Fprintf(w, "Trades:        %d\n", d.Count)
	fmt.Fprintf(w, "Mean:          %.4f\n", d.Mean)
	fmt.Fprintf(w, "Median:        %.4f\n", d.Median)
	fmt.Fprintf(w, "Std Dev:       %.4f\n", d.StdDev)
	fmt.Fprintf(w, "Min / Max:     %.4f / %.4f\n", d.Min, d.Max)
	fmt.Fprintln(w)

	peak := 0
	for _, b := range d.Bins {
		peak = max(peak, b.Count)
	}
	for _, b := range d.Bins {
		bar := 0
		if peak > 0 {
			bar = b.Count * 40 / peak
		}
		fmt.Fprintf(w, "[%7.3f, %7.3f) %5d %s\n", b.Lower, b.Upper, b.Count, strings.Repeat("#", bar))
	}
}

// WriteParallelismSummary prints the peak concurrency of a series.
func WriteParallelismSummary(w io.Writer, points []analysis.ParallelismPoint) {
	section(w, "Trade Parallelism")
	if len(points) == 0 {
		fmt.Fprintln(w, "(no trades)")
		return
	}
	peak, at := analysis.MaxOpenTrades(points)
	fmt.Fprintf(w, "Grid:          %s .. %s (%d points)\n",
		points[0].Time.UTC().Format(time.RFC3339), points[len(points)-1].Time.UTC().Format(time.RFC3339), len(points))
	fmt.Fprintf(w, "Max Open:      %d at %s\n", peak, at.UTC().Format(time.RFC3339))
}

// PrintStrategyStats prints the headline statistics of a strategy.
func PrintStrategyStats(w io.Writer, s *results.StrategyStats) {
	banner(w, "Strategy: "+s.Name)

	fmt.Fprintf(w, "Timeframe:     %s\n", s.Timeframe)
	fmt.Fprintf(w, "Period:        %s .. %s\n", s.BacktestStart, s.BacktestEnd)
	fmt.Fprintf(w, "Trades:        %d\n", s.TotalTrades)
	if s.StakeCurrency != "" {
		fmt.Fprintf(w, "Stake:         %s\n", s.StakeCurrency)
	}
	if s.MaxOpenTrades > 0 {
		fmt.Fprintf(w, "Max Open:      %d\n", s.MaxOpenTrades)
	}

	section(w, "Account Performance")
	fmt.Fprintf(w, "Start Balance: %.2f\n", s.StartingBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", s.FinalBalance)
	fmt.Fprintf(w, "Net Profit:    %.2f\n", s.ProfitTotalAbs)
	fmt.Fprintf(w, "Market Change: %.2f%%\n", s.MarketChange*100)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.Drawdown()*100)
	if s.DrawdownStart != "" || s.DrawdownEnd != "" {
		fmt.Fprintf(w, "Drawdown:      %s .. %s\n", s.DrawdownStart, s.DrawdownEnd)
	}

	section(w, "Pairlist")
	fmt.Fprintln(w, strings.Join(s.Pairlist, ", "))

	section(w, "Results per Pair")
	fmt.Fprintf(w, "%-14s %6s %10s %12s %10s %5s %5s %5s\n", "Pair", "Trades", "Avg %", "Profit Abs", "Duration", "Win", "Draw", "Loss")
	for _, p := range s.ResultsPerPair {
		fmt.Fprintf(w, "%-14s %6d %10.2f %12.2f %10s %5d %5d %5d\n",
			p.Key, p.Trades, p.ProfitMean*100, p.ProfitTotalAbs, p.DurationAvg, p.Wins, p.Draws, p.Losses)
	}
	fmt.Fprintln(w)
}

// PrintComparison prints the strategy comparison table.
func PrintComparison(w io.Writer, rows []results.StrategyComparison) {
	section(w, "Strategy Comparison")
	if len(rows) == 0 {
		fmt.Fprintln(w, "(single strategy)")
		return
	}
	fmt.Fprintf(w, "%-20s %6s %10s %12s %10s %8s\n", "Strategy", "Trades", "Avg %", "Profit Abs", "Duration", "DD %")
	for _, r := range rows {
		fmt.Fprintf(w, "%-20s %6d %10.2f %12.2f %10s %8.2f\n",
			r.Key, r.Trades, r.ProfitMean*100, r.ProfitTotalAbs, r.DurationAvg, r.MaxDrawdown*100)
	}
}

func label(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
