package analysis

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type parallelismConfig struct {
	requireGrid bool
}

// ParallelismOption tunes AnalyzeParallelism.
type ParallelismOption func(*parallelismConfig)

// RequireGrid makes an empty trade set an error (ErrEmptyGrid) instead of an
// empty result.
func RequireGrid() ParallelismOption {
	return func(c *parallelismConfig) { c.requireGrid = true }
}

// event is a +1/-1 change in open trades that first applies at grid index idx.
type event struct {
	idx   int
	delta int
}

// AnalyzeParallelism counts, for each point of a regular grid with the given
// period, how many trades are open at that instant. A trade is open at t when
// OpenTime <= t < CloseTime; a trade without a close time stays open through
// the last grid point.
//
// The grid runs from the earliest open time to the latest timestamp seen in
// the input (close times, or open times of trades that are still open),
// inclusive, one point per period.
func AnalyzeParallelism(trades []Trade, period time.Duration, opts ...ParallelismOption) ([]ParallelismPoint, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	var cfg parallelismConfig
	for _, o := range opts {
		o(&cfg)
	}
	if err := validateIntervals(trades); err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		if cfg.requireGrid {
			return nil, ErrEmptyGrid
		}
		return nil, nil
	}

	start, end := gridBounds(trades)
	n := int(end.Sub(start)/period) + 1

	// Sweep line: each trade becomes an open event and, if closed, a close
	// event, keyed by the first grid index at which it is visible.
	events := make([]event, 0, 2*len(trades))
	for _, t := range trades {
		events = append(events, event{idx: bucket(t.OpenTime, start, period), delta: 1})
		if !t.IsOpen() {
			events = append(events, event{idx: bucket(t.CloseTime, start, period), delta: -1})
		}
	}
	slices.SortFunc(events, func(a, b event) int { return a.idx - b.idx })

	out := make([]ParallelismPoint, n)
	open, j := 0, 0
	for i := 0; i < n; i++ {
		for j < len(events) && events[j].idx <= i {
			open += events[j].delta
			j++
		}
		out[i] = ParallelismPoint{
			Time:       start.Add(time.Duration(i) * period),
			OpenTrades: open,
		}
	}
	return out, nil
}

// bucket returns the index of the first grid point at or after ts. Times
// before the grid start clamp to the first point.
func bucket(ts, start time.Time, period time.Duration) int {
	d := ts.Sub(start)
	if d <= 0 {
		return 0
	}
	return int((d + period - 1) / period)
}

func gridBounds(trades []Trade) (start, end time.Time) {
	start, end = trades[0].OpenTime, trades[0].OpenTime
	for _, t := range trades {
		if t.OpenTime.Before(start) {
			start = t.OpenTime
		}
		if t.OpenTime.After(end) {
			end = t.OpenTime
		}
		if !t.IsOpen() && t.CloseTime.After(end) {
			end = t.CloseTime
		}
	}
	return start, end
}

func validateIntervals(trades []Trade) error {
	for i, t := range trades {
		if t.OpenTime.IsZero() {
			return &InvalidIntervalError{Index: i, ID: t.ID, Pair: t.Pair, Reason: "missing open time"}
		}
		if !t.IsOpen() && t.CloseTime.Before(t.OpenTime) {
			return &InvalidIntervalError{
				Index:  i,
				ID:     t.ID,
				Pair:   t.Pair,
				Open:   t.OpenTime,
				Close:  t.CloseTime,
				Reason: fmt.Sprintf("close time %s precedes open time %s", t.CloseTime.Format(time.RFC3339), t.OpenTime.Format(time.RFC3339)),
			}
		}
	}
	return nil
}

// MaxOpenTrades returns the highest open trade count and the first time it
// was reached. It returns zero values for an empty series.
func MaxOpenTrades(points []ParallelismPoint) (int, time.Time) {
	var (
		peak int
		at   time.Time
	)
	for i, p := range points {
		if i == 0 || p.OpenTrades > peak {
			peak, at = p.OpenTrades, p.Time
		}
	}
	return peak, at
}

// ParallelismByPair runs AnalyzeParallelism for every pair concurrently. Each
// pair gets its own grid. The whole input is validated first so error indexes
// refer to positions in trades.
func ParallelismByPair(ctx context.Context, trades []Trade, period time.Duration) (map[string][]ParallelismPoint, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if err := validateIntervals(trades); err != nil {
		return nil, err
	}

	byPair := make(map[string][]Trade)
	for _, t := range trades {
		byPair[t.Pair] = append(byPair[t.Pair], t)
	}

	var mu sync.Mutex
	out := make(map[string][]ParallelismPoint, len(byPair))

	g, ctx := errgroup.WithContext(ctx)
	for pair, ts := range byPair {
		pair, ts := pair, ts
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pts, err := AnalyzeParallelism(ts, period)
			if err != nil {
				return fmt.Errorf("pair %s: %w", pair, err)
			}
			mu.Lock()
			out[pair] = pts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
