package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise trades by pair and exit reason",
	Long: `Count trades per pair, per exit reason and per (pair, exit reason),
then print the profit ratio distribution of the closed trades.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	trades, _, err := loadTrades(cmd.Context())
	if err != nil {
		return err
	}
	dist, err := analysis.ProfitDistribution(analysis.ProfitRatios(trades), cfg.Distribution.BinSize)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	report.WriteGroupCounts(w, "Trades by Pair", analysis.GroupBy(trades, analysis.ByPair))
	report.WriteGroupCounts(w, "Trades by Exit Reason", analysis.GroupBy(trades, analysis.ByExitReason))
	report.WritePairReasonCounts(w, analysis.CountByPairAndReason(trades))
	report.WriteDistribution(w, dist)
	return nil
}
