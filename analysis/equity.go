package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// BuildEquityCurve turns a per-day profit series into the opening equity of
// each day, starting from zero. The value at index i is the sum of the
// profits at indices 0..i-1, so the final day's closing equity is never shown.
//
// The series must be strictly ascending by date and every profit finite.
// Gaps between dates are kept as they are; nothing is interpolated.
func BuildEquityCurve(profits []DailyProfit) ([]EquityPoint, error) {
	for i, p := range profits {
		if !finite(p.ProfitAbs) {
			return nil, &NonFiniteValueError{Record: "daily profit", Index: i, Field: "profit_abs", Value: p.ProfitAbs}
		}
		if i > 0 && !p.Date.After(profits[i-1].Date) {
			return nil, &UnorderedInputError{
				Index: i,
				Prev:  profits[i-1].Date,
				Date:  p.Date,
			}
		}
	}

	out := make([]EquityPoint, 0, len(profits))
	foldEquity(profits, decimal.Zero, func(p DailyProfit, opening decimal.Decimal) {
		out = append(out, EquityPoint{Date: p.Date, Equity: opening.InexactFloat64()})
	})
	return out, nil
}

// foldEquity threads the running total through the series, handing each day
// the equity it opened with. It returns the closing equity of the last day.
// Non-finite profits are not added.
func foldEquity(profits []DailyProfit, start decimal.Decimal, emit func(DailyProfit, decimal.Decimal)) decimal.Decimal {
	acc := start
	for _, p := range profits {
		emit(p, acc)
		if finite(p.ProfitAbs) {
			acc = acc.Add(decimal.NewFromFloat(p.ProfitAbs))
		}
	}
	return acc
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// TotalProfit is the closing equity after the last day of the series. NaN
// and infinite days are skipped.
func TotalProfit(profits []DailyProfit) float64 {
	return foldEquity(profits, decimal.Zero, func(DailyProfit, decimal.Decimal) {}).InexactFloat64()
}
