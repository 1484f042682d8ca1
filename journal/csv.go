// journal/csv.go
package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
)

var csvHeader = []string{"trade_id", "pair", "open_time", "close_time", "profit_ratio", "profit_abs", "exit_reason"}

type CSVJournal struct {
	trades *csv.Writer
	tf     *os.File
}

func NewCSV(tradesPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}

	tw := csv.NewWriter(tf)
	if err := tw.Write(csvHeader); err != nil {
		_ = tf.Close()
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		_ = tf.Close()
		return nil, err
	}

	return &CSVJournal{trades: tw, tf: tf}, nil
}

func (j *CSVJournal) RecordTrade(t analysis.Trade) error {
	closeTime := ""
	if !t.IsOpen() {
		closeTime = t.CloseTime.UTC().Format(time.RFC3339)
	}
	err := j.trades.Write([]string{
		t.ID,
		t.Pair,
		t.OpenTime.UTC().Format(time.RFC3339),
		closeTime,
		f(t.ProfitRatio),
		f(t.ProfitAbs),
		t.ExitReason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// CSVSource reads trades written by CSVJournal.
type CSVSource struct {
	Path string
}

func (s CSVSource) LoadTrades(ctx context.Context) ([]analysis.Trade, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a trades CSV. An empty close_time marks an open trade.
func ReadCSV(r io.Reader) ([]analysis.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("trades csv: missing header")
		}
		return nil, err
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("trades csv: column %d is %q, want %q", i, header[i], col)
		}
	}

	var out []analysis.Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		t := analysis.Trade{ID: rec[0], Pair: rec[1], ExitReason: rec[6]}
		if t.OpenTime, err = time.Parse(time.RFC3339, rec[2]); err != nil {
			return nil, fmt.Errorf("trades csv line %d: open_time: %w", line, err)
		}
		if rec[3] != "" {
			if t.CloseTime, err = time.Parse(time.RFC3339, rec[3]); err != nil {
				return nil, fmt.Errorf("trades csv line %d: close_time: %w", line, err)
			}
		}
		if t.ProfitRatio, err = parseAmount(rec[4]); err != nil {
			return nil, fmt.Errorf("trades csv line %d: profit_ratio: %w", line, err)
		}
		if t.ProfitAbs, err = parseAmount(rec[5]); err != nil {
			return nil, fmt.Errorf("trades csv line %d: profit_abs: %w", line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}
