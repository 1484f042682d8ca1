package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1m", time.Minute, false},
		{"5m", 5 * time.Minute, false},
		{"15m", 15 * time.Minute, false},
		{"1h", time.Hour, false},
		{"4h", 4 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"30s", 30 * time.Second, false},
		{" 5m ", 5 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"0m", 0, true},
		{"-5m", 0, true},
		{"1M", 0, true},
		{"m", 0, true},
		{"", 0, true},
		{"five", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeframe(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTimeframe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTimeframe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Minute, "5m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "90m"},
		{24 * time.Hour, "1d"},
		{14 * 24 * time.Hour, "2w"},
		{45 * time.Second, "45s"},
	}
	for _, tt := range tests {
		got, err := FormatTimeframe(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)

		back, err := ParseTimeframe(got)
		require.NoError(t, err)
		assert.Equal(t, tt.in, back)
	}

	_, err := FormatTimeframe(0)
	assert.Error(t, err)
	_, err = FormatTimeframe(1500 * time.Millisecond)
	assert.Error(t, err)
}
