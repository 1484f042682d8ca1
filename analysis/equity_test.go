package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day0(n int) time.Time {
	return time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestBuildEquityCurve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profits []DailyProfit
		want    []EquityPoint
	}{
		{
			name:    "empty",
			profits: nil,
			want:    []EquityPoint{},
		},
		{
			name:    "single_day",
			profits: []DailyProfit{{Date: day0(0), ProfitAbs: 42}},
			want:    []EquityPoint{{Date: day0(0), Equity: 0}},
		},
		{
			name: "opening_equity",
			profits: []DailyProfit{
				{Date: day0(0), ProfitAbs: 10},
				{Date: day0(1), ProfitAbs: -5},
				{Date: day0(2), ProfitAbs: 20},
			},
			want: []EquityPoint{
				{Date: day0(0), Equity: 0},
				{Date: day0(1), Equity: 10},
				{Date: day0(2), Equity: 5},
			},
		},
		{
			name: "gaps_are_kept",
			profits: []DailyProfit{
				{Date: day0(0), ProfitAbs: 1.5},
				{Date: day0(4), ProfitAbs: 2.25},
				{Date: day0(10), ProfitAbs: 0},
			},
			want: []EquityPoint{
				{Date: day0(0), Equity: 0},
				{Date: day0(4), Equity: 1.5},
				{Date: day0(10), Equity: 3.75},
			},
		},
		{
			name: "no_float_drift",
			profits: []DailyProfit{
				{Date: day0(0), ProfitAbs: 0.1},
				{Date: day0(1), ProfitAbs: 0.2},
				{Date: day0(2), ProfitAbs: 0},
			},
			want: []EquityPoint{
				{Date: day0(0), Equity: 0},
				{Date: day0(1), Equity: 0.1},
				{Date: day0(2), Equity: 0.3},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildEquityCurve(tt.profits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEquityCurveIsRepeatable(t *testing.T) {
	t.Parallel()

	profits := []DailyProfit{
		{Date: day0(0), ProfitAbs: 3.3},
		{Date: day0(1), ProfitAbs: -1.1},
		{Date: day0(2), ProfitAbs: 7},
	}
	first, err := BuildEquityCurve(profits)
	require.NoError(t, err)
	second, err := BuildEquityCurve(profits)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildEquityCurveRejectsUnordered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profits []DailyProfit
		index   int
	}{
		{
			name: "descending",
			profits: []DailyProfit{
				{Date: day0(1), ProfitAbs: 1},
				{Date: day0(0), ProfitAbs: 2},
			},
			index: 1,
		},
		{
			name: "duplicate_date",
			profits: []DailyProfit{
				{Date: day0(0), ProfitAbs: 1},
				{Date: day0(1), ProfitAbs: 1},
				{Date: day0(1), ProfitAbs: 1},
			},
			index: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildEquityCurve(tt.profits)
			assert.Nil(t, got)

			var uerr *UnorderedInputError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tt.index, uerr.Index)
			assert.Contains(t, err.Error(), "does not follow")
		})
	}
}

func TestTotalProfit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, TotalProfit(nil))
	assert.Equal(t, 25.0, TotalProfit([]DailyProfit{
		{Date: day0(0), ProfitAbs: 10},
		{Date: day0(1), ProfitAbs: -5},
		{Date: day0(2), ProfitAbs: 20},
	}))
}

func TestBuildEquityCurveRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for name, v := range map[string]float64{
		"nan":     math.NaN(),
		"pos_inf": math.Inf(1),
		"neg_inf": math.Inf(-1),
	} {
		v := v
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			profits := []DailyProfit{
				{Date: day0(0), ProfitAbs: 1},
				{Date: day0(1), ProfitAbs: v},
				{Date: day0(2), ProfitAbs: 1},
			}

			var (
				got []EquityPoint
				err error
			)
			require.NotPanics(t, func() { got, err = BuildEquityCurve(profits) })
			assert.Nil(t, got)

			var verr *NonFiniteValueError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, "profit_abs", verr.Field)
			assert.Contains(t, err.Error(), "daily profit 1")

			assert.Equal(t, 2.0, TotalProfit(profits))
		})
	}
}
