package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/report"
)

var statsAll bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print strategy statistics from the backtest results",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&statsAll, "all", "a", false, "print every strategy and the comparison table")
}

func runStats(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if !statsAll {
		_, s, err := loadStrategy()
		if err != nil {
			return err
		}
		report.PrintStrategyStats(w, s)
		return nil
	}

	res, err := loadResults()
	if err != nil {
		return err
	}
	for _, name := range res.StrategyNames() {
		s, err := res.Strategy(name)
		if err != nil {
			return err
		}
		report.PrintStrategyStats(w, s)
	}
	report.PrintComparison(w, res.Comparison)
	return nil
}
