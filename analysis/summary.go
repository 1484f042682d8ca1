package analysis

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// GroupCount aggregates the trades that share a key. Count includes open
// trades; the profit figures cover closed trades only, like ProfitRatios.
type GroupCount struct {
	Key   string
	Count int
	Open  int
	// ProfitRatios holds the finite ratios of the group's closed trades,
	// ascending.
	ProfitRatios []float64
	ProfitAbs    float64
}

// MeanProfitRatio is the average profit ratio of the group.
func (g GroupCount) MeanProfitRatio() float64 {
	if len(g.ProfitRatios) == 0 {
		return 0
	}
	return stat.Mean(g.ProfitRatios, nil)
}

// PairReasonCount is the number of trades of a pair that closed for a reason.
type PairReasonCount struct {
	Pair   string
	Reason string
	Count  int
}

// KeyFunc extracts a grouping key from a trade.
type KeyFunc func(Trade) string

// ByPair groups by instrument.
func ByPair(t Trade) string { return t.Pair }

// ByExitReason groups by exit reason.
func ByExitReason(t Trade) string { return t.ExitReason }

// GroupBy aggregates trades by key. Groups are ordered by key and the result
// does not depend on the order of the input. NaN and infinite profits are
// left out of the sums.
func GroupBy(trades []Trade, key KeyFunc) []GroupCount {
	type acc struct {
		count  int
		open   int
		ratios []float64
		abs    decimal.Decimal
	}
	groups := make(map[string]*acc)
	for _, t := range trades {
		k := key(t)
		g, ok := groups[k]
		if !ok {
			g = &acc{abs: decimal.Zero}
			groups[k] = g
		}
		g.count++
		if t.IsOpen() {
			g.open++
			continue
		}
		if finite(t.ProfitRatio) {
			g.ratios = append(g.ratios, t.ProfitRatio)
		}
		if finite(t.ProfitAbs) {
			g.abs = g.abs.Add(decimal.NewFromFloat(t.ProfitAbs))
		}
	}

	out := make([]GroupCount, 0, len(groups))
	for k, g := range groups {
		slices.Sort(g.ratios)
		out = append(out, GroupCount{
			Key:          k,
			Count:        g.count,
			Open:         g.open,
			ProfitRatios: g.ratios,
			ProfitAbs:    g.abs.InexactFloat64(),
		})
	}
	slices.SortFunc(out, func(a, b GroupCount) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// CountByPairAndReason counts trades per (pair, exit reason), ordered by pair
// and then by reason.
func CountByPairAndReason(trades []Trade) []PairReasonCount {
	type key struct{ pair, reason string }
	counts := make(map[key]int)
	for _, t := range trades {
		counts[key{t.Pair, t.ExitReason}]++
	}

	out := make([]PairReasonCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PairReasonCount{Pair: k.pair, Reason: k.reason, Count: n})
	}
	slices.SortFunc(out, func(a, b PairReasonCount) int {
		if c := cmp.Compare(a.Pair, b.Pair); c != 0 {
			return c
		}
		return cmp.Compare(a.Reason, b.Reason)
	})
	return out
}

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Distribution summarizes a set of profit ratios.
type Distribution struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	Bins   []Bin
}

// ProfitRatios collects the profit ratios of closed trades.
func ProfitRatios(trades []Trade) []float64 {
	out := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t.IsOpen() {
			continue
		}
		out = append(out, t.ProfitRatio)
	}
	return out
}

// ProfitDistribution builds a fixed-width histogram of ratios together with
// the usual moments. NaN values are ignored.
func ProfitDistribution(ratios []float64, binSize float64) (Distribution, error) {
	if binSize <= 0 || math.IsNaN(binSize) || math.IsInf(binSize, 0) {
		return Distribution{}, ErrInvalidBinSize
	}

	x := make([]float64, 0, len(ratios))
	for _, r := range ratios {
		if !finite(r) {
			continue
		}
		x = append(x, r)
	}
	if len(x) == 0 {
		return Distribution{}, nil
	}
	slices.Sort(x)

	d := Distribution{
		Count:  len(x),
		Min:    x[0],
		Max:    x[len(x)-1],
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
	}
	d.Mean, d.StdDev = stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		d.StdDev = 0
	}

	dividers, err := binDividers(d.Min, d.Max, binSize)
	if err != nil {
		return Distribution{}, err
	}
	counts := stat.Histogram(nil, dividers, x, nil)
	d.Bins = make([]Bin, len(counts))
	for i, c := range counts {
		d.Bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(c)}
	}
	return d, nil
}

// MaxBins bounds the number of histogram bins ProfitDistribution builds.
const MaxBins = 10000

// binDividers returns bin edges aligned to multiples of size such that
// edges[0] <= lo and hi < edges[len-1].
func binDividers(lo, hi, size float64) ([]float64, error) {
	if (hi-lo)/size > MaxBins {
		return nil, fmt.Errorf("%w: %g over [%g, %g] needs more than %d bins", ErrInvalidBinSize, size, lo, hi, MaxBins)
	}
	first := math.Floor(lo / size)
	if first*size > lo {
		first--
	}
	last := math.Floor(hi/size) + 1
	if last*size <= hi {
		last++
	}
	n := int(last-first) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = (first + float64(i)) * size
	}
	return out, nil
}
