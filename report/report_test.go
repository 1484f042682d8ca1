package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/pkg/id"
	"github.com/rustyeddy/btanalysis/results"
)

var base = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

func sampleInput() Input {
	return Input{
		Strategy:  "SampleStrategy",
		Timeframe: "5m",
		BinSize:   0.01,
		DailyProfit: []analysis.DailyProfit{
			{Date: base, ProfitAbs: 10},
			{Date: base.AddDate(0, 0, 1), ProfitAbs: -5},
			{Date: base.AddDate(0, 0, 2), ProfitAbs: 20},
		},
		Trades: []analysis.Trade{
			{ID: "1", Pair: "BTC/USDT", OpenTime: base, CloseTime: base.Add(10 * time.Minute), ProfitRatio: 0.01, ProfitAbs: 10, ExitReason: "roi"},
			{ID: "2", Pair: "ETH/USDT", OpenTime: base.Add(5 * time.Minute), CloseTime: base.Add(15 * time.Minute), ProfitRatio: -0.005, ProfitAbs: -5, ExitReason: "stop_loss"},
			{ID: "3", Pair: "BTC/USDT", OpenTime: base.Add(10 * time.Minute), ProfitRatio: 0.02, ProfitAbs: 20},
		},
	}
}

func TestWriteEquityCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteEquityCSV(&buf, []analysis.EquityPoint{
		{Date: base, Equity: 0},
		{Date: base.AddDate(0, 0, 1), Equity: 10.5},
	}))
	assert.Equal(t, "date,equity\n2021-03-01,0\n2021-03-02,10.5\n", buf.String())
}

func TestWriteParallelismCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteParallelismCSV(&buf, []analysis.ParallelismPoint{
		{Time: base, OpenTrades: 1},
		{Time: base.Add(5 * time.Minute), OpenTrades: 2},
	}))
	assert.Equal(t, "time,open_trades\n2021-03-01T00:00:00Z,1\n2021-03-01T00:05:00Z,2\n", buf.String())
}

func TestNewRun(t *testing.T) {
	t.Parallel()

	r, err := NewRun(sampleInput())
	require.NoError(t, err)

	_, err = id.Time(r.RunID)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Days)
	assert.Equal(t, 5.0, r.LastEquity)
	assert.Equal(t, 25.0, r.TotalProfit)
	assert.Equal(t, 3, r.Trades)
	assert.Equal(t, 1, r.OpenTrades)
	assert.Equal(t, 2, r.MaxOpen)
	assert.True(t, r.MaxOpenAt.Equal(base.Add(5*time.Minute)))
	require.Len(t, r.ByPair, 2)
	assert.Equal(t, "BTC/USDT", r.ByPair[0].Key)
	require.Len(t, r.ByReason, 3)
	assert.Equal(t, "", r.ByReason[0].Key)
	assert.Equal(t, 2, r.Distribution.Count)
	assert.Len(t, r.Parallelism, 4)
	assert.Len(t, r.Notes, 1)
}

func TestNewRunFailsOnBadInput(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.DailyProfit[1].Date = base
	_, err := NewRun(in)
	var uerr *analysis.UnorderedInputError
	assert.True(t, errors.As(err, &uerr))

	in = sampleInput()
	in.Trades[0].CloseTime = base.Add(-time.Minute)
	_, err = NewRun(in)
	var ierr *analysis.InvalidIntervalError
	assert.True(t, errors.As(err, &ierr))

	in = sampleInput()
	in.Timeframe = "soon"
	_, err = NewRun(in)
	assert.ErrorIs(t, err, analysis.ErrUnknownTimeframe)

	in = sampleInput()
	in.BinSize = 0
	_, err = NewRun(in)
	assert.ErrorIs(t, err, analysis.ErrInvalidBinSize)
}

func TestRunWriteOrgFile(t *testing.T) {
	t.Parallel()

	r, err := NewRun(sampleInput())
	require.NoError(t, err)
	r.ResultsPath = "user_data/backtest_results"
	r.EquityCSV = "equity.csv"
	r.OrgPath = filepath.Join(t.TempDir(), "run.org")

	require.NoError(t, r.WriteOrgFile())
	data, err := os.ReadFile(r.OrgPath)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "* ANALYSIS: SampleStrategy 5m")
	assert.Contains(t, out, ":RUN_ID:      "+r.RunID)
	assert.Contains(t, out, ":NET_PROFIT:  25.00")
	assert.Contains(t, out, ":MAX_OPEN:    2")
	assert.Contains(t, out, "- Data: [[file:equity.csv]]")
	assert.NotContains(t, out, "[[file:]]")
	assert.Contains(t, out, "| BTC/USDT | 2 | 30.00 | 1.50 |")
	assert.Contains(t, out, "| (none) | 1 | 20.00 |")
	assert.Contains(t, out, "** Observations")

	r.OrgPath = ""
	assert.Error(t, r.WriteOrgFile())
}

func TestTextWriters(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	var buf bytes.Buffer

	WriteGroupCounts(&buf, "Trades per Pair", analysis.GroupBy(in.Trades, analysis.ByPair))
	WritePairReasonCounts(&buf, analysis.CountByPairAndReason(in.Trades))
	d, err := analysis.ProfitDistribution(analysis.ProfitRatios(in.Trades), 0.01)
	require.NoError(t, err)
	WriteDistribution(&buf, d)
	points, err := analysis.AnalyzeParallelism(in.Trades, 5*time.Minute)
	require.NoError(t, err)
	WriteParallelismSummary(&buf, points)

	out := buf.String()
	assert.Contains(t, out, "Trades per Pair")
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "stop_loss")
	assert.Contains(t, out, "Profit Ratio Distribution")
	assert.Contains(t, out, "Max Open:      2 at 2021-03-01T00:05:00Z")

	buf.Reset()
	WriteGroupCounts(&buf, "Empty", nil)
	WritePairReasonCounts(&buf, nil)
	WriteDistribution(&buf, analysis.Distribution{})
	WriteParallelismSummary(&buf, nil)
	assert.Equal(t, 3, strings.Count(buf.String(), "(no trades)"))
	assert.Contains(t, buf.String(), "(no closed trades)")
}

func TestPrintStrategyStats(t *testing.T) {
	t.Parallel()

	s := &results.StrategyStats{
		Name:               "SampleStrategy",
		Timeframe:          "5m",
		TotalTrades:        4,
		MarketChange:       0.042,
		MaxDrawdownAccount: 0.0125,
		DrawdownStart:      "2021-03-02 10:00:00",
		DrawdownEnd:        "2021-03-02 14:00:00",
		Pairlist:           []string{"BTC/USDT", "ETH/USDT"},
		ResultsPerPair:     []results.PairResult{{Key: "BTC/USDT", Trades: 2, ProfitMean: 0.01, ProfitTotalAbs: 15}},
	}

	var buf bytes.Buffer
	PrintStrategyStats(&buf, s)
	PrintComparison(&buf, []results.StrategyComparison{{Key: "SampleStrategy", Trades: 4, MaxDrawdown: 0.0125}})
	out := buf.String()

	assert.Contains(t, out, " Strategy: SampleStrategy")
	assert.Contains(t, out, "Market Change: 4.20%")
	assert.Contains(t, out, "Max Drawdown:  1.25%")
	assert.Contains(t, out, "2021-03-02 10:00:00 .. 2021-03-02 14:00:00")
	assert.Contains(t, out, "BTC/USDT, ETH/USDT")
	assert.Contains(t, out, "Strategy Comparison")

	buf.Reset()
	PrintComparison(&buf, nil)
	assert.Contains(t, buf.String(), "(single strategy)")
}
