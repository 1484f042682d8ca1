package results

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
)

// TradeRecord is a trade as written to a result file.
type TradeRecord struct {
	TradeID        json.Number `json:"trade_id"`
	Pair           string      `json:"pair"`
	OpenDate       string      `json:"open_date"`
	CloseDate      string      `json:"close_date"`
	OpenTimestamp  int64       `json:"open_timestamp"`
	CloseTimestamp int64       `json:"close_timestamp"`
	ProfitRatio    float64     `json:"profit_ratio"`
	ProfitAbs      float64     `json:"profit_abs"`
	ExitReason     string      `json:"exit_reason"`
	SellReason     string      `json:"sell_reason"`
	IsOpen         bool        `json:"is_open"`
}

// Trade converts the record. Dates win over millisecond timestamps; the
// legacy sell_reason is used when exit_reason is missing.
func (r TradeRecord) Trade() (analysis.Trade, error) {
	t := analysis.Trade{
		ID:          r.TradeID.String(),
		Pair:        r.Pair,
		ProfitRatio: r.ProfitRatio,
		ProfitAbs:   r.ProfitAbs,
		ExitReason:  r.ExitReason,
	}
	if t.ExitReason == "" {
		t.ExitReason = r.SellReason
	}

	open, err := pickTime(r.OpenDate, r.OpenTimestamp)
	if err != nil {
		return analysis.Trade{}, fmt.Errorf("pair %s: open date: %w", r.Pair, err)
	}
	if open.IsZero() {
		return analysis.Trade{}, fmt.Errorf("pair %s: open date missing", r.Pair)
	}
	t.OpenTime = open

	if r.IsOpen {
		return t, nil
	}
	closeT, err := pickTime(r.CloseDate, r.CloseTimestamp)
	if err != nil {
		return analysis.Trade{}, fmt.Errorf("pair %s: close date: %w", r.Pair, err)
	}
	t.CloseTime = closeT
	return t, nil
}

func pickTime(s string, ms int64) (time.Time, error) {
	if strings.TrimSpace(s) != "" {
		return parseTime(s)
	}
	if ms != 0 {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts the date formats seen in result files. Fractional
// seconds are accepted by every layout; values without a zone are UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// DailyProfitRow is a ["YYYY-MM-DD", profit_abs] pair.
type DailyProfitRow struct {
	Date      string
	ProfitAbs float64
}

func (d *DailyProfitRow) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("daily profit row: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("daily profit row: want 2 fields, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &d.Date); err != nil {
		return fmt.Errorf("daily profit date: %w", err)
	}

	// Profit is normally a number but some writers quote it.
	if err := json.Unmarshal(raw[1], &d.ProfitAbs); err != nil {
		var s string
		if err2 := json.Unmarshal(raw[1], &s); err2 != nil {
			return fmt.Errorf("daily profit value: %w", err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("daily profit value: %w", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("daily profit %s: value %q is not finite", d.Date, s)
		}
		d.ProfitAbs = v
	}
	return nil
}

func (d DailyProfitRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Date, d.ProfitAbs})
}
