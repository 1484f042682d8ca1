package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/report"
)

var (
	reportDir   string
	reportNotes []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a full analysis report",
	Long: `Run every analysis over the selected strategy and write the results to
the output directory:

  <run-id>-equity.csv       opening equity per day
  <run-id>-parallelism.csv  open trades per grid point
  <run-id>.org              Org-mode summary linking both files`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportDir, "dir", "o", "", "output directory (defaults to output.dir)")
	reportCmd.Flags().StringArrayVarP(&reportNotes, "note", "n", nil, "note to add to the report (repeatable)")
}

func runReport(cmd *cobra.Command, args []string) error {
	_, s, err := loadStrategy()
	if err != nil {
		return err
	}
	profits, err := s.DailyProfit()
	if err != nil {
		return err
	}
	trades, source, err := loadTrades(cmd.Context())
	if err != nil {
		return err
	}

	run, err := report.NewRun(report.Input{
		Strategy:    s.Name,
		Timeframe:   cfg.Timeframe,
		DailyProfit: profits,
		Trades:      trades,
		BinSize:     cfg.Distribution.BinSize,
	})
	if err != nil {
		return fmt.Errorf("strategy %s: %w", s.Name, err)
	}

	dir := reportDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	run.ResultsPath = cfg.ResultsPath()
	run.TradeSource = source
	run.EquityCSV = filepath.Join(dir, run.RunID+"-equity.csv")
	run.ParallelismCSV = filepath.Join(dir, run.RunID+"-parallelism.csv")
	run.OrgPath = filepath.Join(dir, run.RunID+".org")
	run.Notes = append(run.Notes, reportNotes...)

	if err := writeFile(run.EquityCSV, func(w io.Writer) error {
		return report.WriteEquityCSV(w, run.Equity)
	}); err != nil {
		return err
	}
	if err := writeFile(run.ParallelismCSV, func(w io.Writer) error {
		return report.WriteParallelismCSV(w, run.Parallelism)
	}); err != nil {
		return err
	}
	if err := run.WriteOrgFile(); err != nil {
		return err
	}

	log.Info().Str("run_id", run.RunID).Str("dir", dir).Msg("report written")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Report %s written to %s\n", run.RunID, run.OrgPath)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeOutput(f, write); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
