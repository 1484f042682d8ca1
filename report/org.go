package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/btanalysis/analysis"
	"github.com/rustyeddy/btanalysis/pkg/id"
)

// Run is one analysis pass over a strategy's backtest output.
type Run struct {
	RunID       string
	Created     time.Time
	Strategy    string
	Timeframe   string
	ResultsPath string
	TradeSource string

	Days        int
	LastEquity  float64 // opening equity of the final day
	TotalProfit float64

	Trades     int
	OpenTrades int
	MaxOpen    int
	MaxOpenAt  time.Time

	ByPair       []analysis.GroupCount
	ByReason     []analysis.GroupCount
	PairReasons  []analysis.PairReasonCount
	Distribution analysis.Distribution

	Equity      []analysis.EquityPoint
	Parallelism []analysis.ParallelismPoint

	EquityCSV      string
	ParallelismCSV string
	OrgPath        string

	Notes []string
}

// Input is what NewRun analyses.
type Input struct {
	Strategy    string
	Timeframe   string
	DailyProfit []analysis.DailyProfit
	Trades      []analysis.Trade
	BinSize     float64
}

// NewRun computes the equity curve, trade parallelism and trade summaries.
// Any invalid input fails the whole run.
func NewRun(in Input) (*Run, error) {
	period, err := analysis.ParseTimeframe(in.Timeframe)
	if err != nil {
		return nil, err
	}

	equity, err := analysis.BuildEquityCurve(in.DailyProfit)
	if err != nil {
		return nil, fmt.Errorf("equity curve: %w", err)
	}
	parallel, err := analysis.AnalyzeParallelism(in.Trades, period)
	if err != nil {
		return nil, fmt.Errorf("trade parallelism: %w", err)
	}
	dist, err := analysis.ProfitDistribution(analysis.ProfitRatios(in.Trades), in.BinSize)
	if err != nil {
		return nil, fmt.Errorf("profit distribution: %w", err)
	}

	created := time.Now().UTC()
	r := &Run{
		RunID:        id.At(created),
		Created:      created,
		Strategy:     in.Strategy,
		Timeframe:    in.Timeframe,
		Days:         len(equity),
		TotalProfit:  analysis.TotalProfit(in.DailyProfit),
		Trades:       len(in.Trades),
		ByPair:       analysis.GroupBy(in.Trades, analysis.ByPair),
		ByReason:     analysis.GroupBy(in.Trades, analysis.ByExitReason),
		PairReasons:  analysis.CountByPairAndReason(in.Trades),
		Distribution: dist,
		Equity:       equity,
		Parallelism:  parallel,
	}
	if len(equity) > 0 {
		r.LastEquity = equity[len(equity)-1].Equity
	}
	for _, t := range in.Trades {
		if t.IsOpen() {
			r.OpenTrades++
		}
	}
	r.MaxOpen, r.MaxOpenAt = analysis.MaxOpenTrades(parallel)

	if r.OpenTrades > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("%d trade(s) still open; counted through the end of the grid", r.OpenTrades))
	}
	return r, nil
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"label": label,
}

// WriteOrg renders the run as an Org-mode entry.
func (r *Run) WriteOrg(w io.Writer) error {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, r)
}

// WriteOrgFile writes the Org entry to r.OrgPath.
func (r *Run) WriteOrgFile() error {
	if r.OrgPath == "" {
		return fmt.Errorf("run %s: no org path", r.RunID)
	}
	buf := new(bytes.Buffer)
	if err := r.WriteOrg(buf); err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, buf.Bytes(), 0644)
}

const RunOrgTemplate = `
* ANALYSIS: {{.Strategy}} {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:TIMEFRAME:   {{.Timeframe}}
:RESULTS:     {{if .ResultsPath}}{{.ResultsPath}}{{else}}(results?){{end}}
:TRADES_SRC:  {{if .TradeSource}}{{.TradeSource}}{{else}}backtest{{end}}
:DAYS:        {{.Days}}
:NET_PROFIT:  {{printf "%.2f" .TotalProfit}}
:TRADES:      {{.Trades}}
:OPEN:        {{.OpenTrades}}
:MAX_OPEN:    {{.MaxOpen}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Equity
- Days:                 {{.Days}}
- Last opening equity:  *{{printf "%.2f" .LastEquity}}*
- Net profit:           *{{printf "%.2f" .TotalProfit}}*
{{- if .EquityCSV }}
- Data: [[file:{{.EquityCSV}}]]
{{- end }}

** Trade Parallelism
- Max open trades: *{{.MaxOpen}}*{{if .MaxOpen}} at {{.MaxOpenAt.Format "2006-01-02 15:04"}}{{end}}
{{- if .ParallelismCSV }}
- Data: [[file:{{.ParallelismCSV}}]]
{{- end }}

** Trades per Pair
| Pair | Trades | Profit Abs | Avg % |
|------+--------+------------+-------|
{{- range .ByPair }}
| {{label .Key}} | {{.Count}} | {{printf "%.2f" .ProfitAbs}} | {{printf "%.2f" (mul100 .MeanProfitRatio)}} |
{{- end }}

** Exit Reasons
| Reason | Trades | Profit Abs |
|--------+--------+------------|
{{- range .ByReason }}
| {{label .Key}} | {{.Count}} | {{printf "%.2f" .ProfitAbs}} |
{{- end }}

** Profit Distribution
- Closed trades: {{.Distribution.Count}}
- Mean:          {{printf "%.4f" .Distribution.Mean}}
- Median:        {{printf "%.4f" .Distribution.Median}}
- Std dev:       {{printf "%.4f" .Distribution.StdDev}}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
