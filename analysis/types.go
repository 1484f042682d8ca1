package analysis

import "time"

// Trade is a single backtested or live trade as produced by a results loader
// or a trade store. A zero CloseTime means the trade is still open.
type Trade struct {
	ID          string
	Pair        string
	OpenTime    time.Time
	CloseTime   time.Time
	ProfitRatio float64
	ProfitAbs   float64
	ExitReason  string
}

// IsOpen reports whether the trade has no close time.
func (t Trade) IsOpen() bool {
	return t.CloseTime.IsZero()
}

// DailyProfit is the net realized profit for one calendar day.
type DailyProfit struct {
	Date      time.Time
	ProfitAbs float64
}

// EquityPoint is the opening equity of a day.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// ParallelismPoint is the number of trades open at a grid timestamp.
type ParallelismPoint struct {
	Time       time.Time
	OpenTrades int
}

// FilterPair returns the trades for a single pair, preserving order.
func FilterPair(trades []Trade, pair string) []Trade {
	var out []Trade
	for _, t := range trades {
		if t.Pair == pair {
			out = append(out, t)
		}
	}
	return out
}
