package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/journal"
)

var (
	importDBPath  string
	importCSVPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy backtest trades into a trade database or CSV file",
	Long: `Copy the trades of the selected strategy out of the backtest results.

Trades are written to the SQLite trade database (--db, defaulting to
trades.db_path) and, with --csv, to a CSV file as well.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importDBPath, "db", "d", "", "SQLite trade DB (defaults to trades.db_path)")
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "also write trades to this CSV file")
}

func runImport(cmd *cobra.Command, args []string) error {
	_, s, err := loadStrategy()
	if err != nil {
		return err
	}
	trades, err := s.Trades()
	if err != nil {
		return err
	}

	path := importDBPath
	if path == "" {
		path = cfg.Trades.DBPath
	}
	db, err := journal.NewSQLite(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := db.RecordTrades(cmd.Context(), trades); err != nil {
		return fmt.Errorf("import trades: %w", err)
	}

	if importCSVPath != "" {
		if err := writeTradesCSV(importCSVPath, trades); err != nil {
			return err
		}
	}

	log.Info().Str("strategy", s.Name).Str("db", path).Int("trades", len(trades)).Msg("trades imported")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades of %s into %s\n", len(trades), s.Name, path)
	return nil
}

func writeTradesCSV(path string, trades []analysis.Trade) error {
	j, err := journal.NewCSV(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := recordAll(j, trades); err != nil {
		j.Close()
		return err
	}
	return j.Close()
}

func recordAll(store journal.Store, trades []analysis.Trade) error {
	for i, t := range trades {
		if err := store.RecordTrade(t); err != nil {
			return fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return nil
}
