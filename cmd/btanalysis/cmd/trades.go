package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/btanalysis/journal"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Query the trade database",
	Long: `Query and display trades stored in the SQLite trade database.

Subcommands:
  get   - Show a single trade by ID
  pair  - List trades of one pair
  day   - List trades closed on a specific day (UTC)

Examples:
  btanalysis trades get 42
  btanalysis trades pair BTC/USDT
  btanalysis trades day 2021-03-02`,
}

var tradesGetCmd = &cobra.Command{
	Use:   "get <trade-id>",
	Short: "Show a single trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesGet,
}

var tradesPairCmd = &cobra.Command{
	Use:   "pair <pair>",
	Short: "List trades of one pair",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesPair,
}

var tradesDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDay,
}

var tradesDBPath string

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesGetCmd)
	tradesCmd.AddCommand(tradesPairCmd)
	tradesCmd.AddCommand(tradesDayCmd)

	tradesCmd.PersistentFlags().StringVarP(&tradesDBPath, "db", "d", "", "path to SQLite trade DB (defaults to trades.db_path)")
}

func openTradeDB() (*journal.SQLite, error) {
	path := tradesDBPath
	if path == "" {
		path = cfg.Trades.DBPath
	}
	j, err := journal.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runTradesGet(cmd *cobra.Command, args []string) error {
	j, err := openTradeDB()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradesPair(cmd *cobra.Command, args []string) error {
	j, err := openTradeDB()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByPair(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
	return nil
}

func runTradesDay(cmd *cobra.Command, args []string) error {
	j, err := openTradeDB()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.UTC, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	trades, err := j.ListTradesClosedBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
