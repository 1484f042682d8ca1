package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/report"
)

var (
	parallelOut    string
	parallelByPair bool
	requireGrid    bool
)

var parallelCmd = &cobra.Command{
	Use:   "parallel",
	Short: "Count concurrently open trades over time",
	Long: `Count how many trades are open at each point of a grid spaced by the
timeframe. A trade is open at t when open <= t < close; trades without a
close time stay open through the end of the grid.

With --out the series is written as CSV (time,open_trades) and a summary is
printed. With --by-pair every pair gets its own series; --out then names a
directory receiving one CSV per pair.`,
	RunE: runParallel,
}

func init() {
	rootCmd.AddCommand(parallelCmd)
	parallelCmd.Flags().StringVarP(&parallelOut, "out", "o", "", "output CSV file, or directory with --by-pair")
	parallelCmd.Flags().BoolVar(&parallelByPair, "by-pair", false, "compute one series per pair")
	parallelCmd.Flags().BoolVar(&requireGrid, "require-grid", false, "fail when there are no trades")
}

func runParallel(cmd *cobra.Command, args []string) error {
	period, err := cfg.Period()
	if err != nil {
		return err
	}
	trades, _, err := loadTrades(cmd.Context())
	if err != nil {
		return err
	}

	if parallelByPair {
		return runParallelByPair(cmd, trades, period)
	}

	var opts []analysis.ParallelismOption
	if requireGrid {
		opts = append(opts, analysis.RequireGrid())
	}
	points, err := analysis.AnalyzeParallelism(trades, period, opts...)
	if err != nil {
		return err
	}

	if parallelOut == "" || parallelOut == "-" {
		return report.WriteParallelismCSV(cmd.OutOrStdout(), points)
	}
	if err := writeParallelismFile(parallelOut, points); err != nil {
		return err
	}
	report.WriteParallelismSummary(cmd.OutOrStdout(), points)
	return nil
}

func runParallelByPair(cmd *cobra.Command, trades []analysis.Trade, period time.Duration) error {
	if requireGrid && len(trades) == 0 {
		return analysis.ErrEmptyGrid
	}
	series, err := analysis.ParallelismByPair(cmd.Context(), trades, period)
	if err != nil {
		return err
	}

	pairs := make([]string, 0, len(series))
	for p := range series {
		pairs = append(pairs, p)
	}
	slices.Sort(pairs)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-16s %8s  %s\n", "Pair", "Max Open", "At")
	for _, p := range pairs {
		points := series[p]
		peak, at := analysis.MaxOpenTrades(points)
		fmt.Fprintf(w, "%-16s %8d  %s\n", p, peak, at.UTC().Format(time.RFC3339))

		if parallelOut != "" && parallelOut != "-" {
			path := filepath.Join(parallelOut, pairFileName(p)+".csv")
			if err := writeParallelismFile(path, points); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeParallelismFile(path string, points []analysis.ParallelismPoint) error {
	f, err := createOutput(os.Stdout, path)
	if err != nil {
		return err
	}
	err = writeOutput(f, func(w io.Writer) error {
		return report.WriteParallelismCSV(w, points)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("path", path).Int("points", len(points)).Msg("parallelism written")
	return nil
}

// pairFileName turns "BTC/USDT" or "BTC/USDT:USDT" into a file name.
func pairFileName(pair string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(pair)
}
