package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/btanalysis/analysis"
)

func TestCSVJournalHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := csv.NewReader(strings.NewReader(string(data))).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"trade_id", "pair", "open_time", "close_time", "profit_ratio", "profit_abs", "exit_reason"}, header)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	open := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)

	require.NoError(t, j.RecordTrade(analysis.Trade{
		ID:          "T1",
		Pair:        "BTC/USDT",
		OpenTime:    open,
		CloseTime:   closeT,
		ProfitRatio: 0.0123456789,
		ProfitAbs:   -12.5,
		ExitReason:  "stop_loss",
	}))
	require.NoError(t, j.RecordTrade(analysis.Trade{ID: "T2", Pair: "ETH/USDT", OpenTime: open}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"T1",
		"BTC/USDT",
		open.Format(time.RFC3339),
		closeT.Format(time.RFC3339),
		"0.012346",
		"-12.500000",
		"stop_loss",
	}, rows[1])
	assert.Equal(t, "", rows[2][3])
}

func TestCSVSourceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	open := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	in := []analysis.Trade{
		{ID: "a", Pair: "BTC/USDT", OpenTime: open, CloseTime: open.Add(time.Hour), ProfitRatio: 0.5, ProfitAbs: 5, ExitReason: "roi"},
		{ID: "b", Pair: "BTC/USDT", OpenTime: open.Add(30 * time.Minute)},
	}
	for _, tr := range in {
		require.NoError(t, j.RecordTrade(tr))
	}
	require.NoError(t, j.Close())

	got, err := CSVSource{Path: path}.LoadTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, in[0].ID, got[0].ID)
	assert.True(t, got[0].CloseTime.Equal(in[0].CloseTime))
	assert.Equal(t, 0.5, got[0].ProfitRatio)
	assert.True(t, got[1].IsOpen())
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "missing header"},
		{"wrong_header", "id,pair,open_time,close_time,profit_ratio,profit_abs,exit_reason\n", "column 0"},
		{"bad_open", "trade_id,pair,open_time,close_time,profit_ratio,profit_abs,exit_reason\n1,BTC/USDT,nope,,0,0,roi\n", "line 2: open_time"},
		{"bad_ratio", "trade_id,pair,open_time,close_time,profit_ratio,profit_abs,exit_reason\n1,BTC/USDT,2024-01-02T03:00:00Z,,x,0,roi\n", "profit_ratio"},
		{"nan_abs", "trade_id,pair,open_time,close_time,profit_ratio,profit_abs,exit_reason\n1,BTC/USDT,2024-01-02T03:00:00Z,,0.01,NaN,roi\n", "line 2: profit_abs: \"NaN\" is not finite"},
		{"inf_ratio", "trade_id,pair,open_time,close_time,profit_ratio,profit_abs,exit_reason\n1,BTC/USDT,2024-01-02T03:00:00Z,,+Inf,1,roi\n", "profit_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}
