// Package report writes analysis results as CSV, plain text and Org-mode.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
)

// WriteEquityCSV writes date,equity rows.
func WriteEquityCSV(w io.Writer, points []analysis.EquityPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "equity"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Date.Format("2006-01-02"), formatF(p.Equity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParallelismCSV writes time,open_trades rows.
func WriteParallelismCSV(w io.Writer, points []analysis.ParallelismPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open_trades"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Time.UTC().Format(time.RFC3339), strconv.Itoa(p.OpenTrades)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
