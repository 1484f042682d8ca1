package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/report"
)

var equityOut string

var equityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Build the daily equity curve of a strategy",
	Long: `Build the opening equity of each day from the strategy's daily profit.

The curve starts at 0 and each point excludes that day's own profit.
Output is CSV with columns date,equity.`,
	RunE: runEquity,
}

func init() {
	rootCmd.AddCommand(equityCmd)
	equityCmd.Flags().StringVarP(&equityOut, "out", "o", "", "output CSV file (stdout when empty)")
}

func runEquity(cmd *cobra.Command, args []string) error {
	_, s, err := loadStrategy()
	if err != nil {
		return err
	}
	profits, err := s.DailyProfit()
	if err != nil {
		return err
	}
	curve, err := analysis.BuildEquityCurve(profits)
	if err != nil {
		return fmt.Errorf("strategy %s: %w", s.Name, err)
	}
	log.Debug().Str("strategy", s.Name).Int("days", len(curve)).Msg("equity curve built")

	out, err := createOutput(cmd.OutOrStdout(), equityOut)
	if err != nil {
		return err
	}
	return writeOutput(out, func(w io.Writer) error {
		return report.WriteEquityCSV(w, curve)
	})
}
