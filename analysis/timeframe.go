package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownTimeframe is returned for timeframe strings that cannot be mapped
// to a fixed duration.
var ErrUnknownTimeframe = errors.New("analysis: unknown timeframe")

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var timeframeUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': day,
	'w': week,
}

// ParseTimeframe converts a candle timeframe such as "5m", "1h" or "1d" into
// a duration. Go duration strings ("1h30m") are accepted as well.
func ParseTimeframe(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}

	if unit, ok := timeframeUnits[s[len(s)-1]]; ok {
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil {
			if n <= 0 {
				return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
			}
			return time.Duration(n) * unit, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return d, nil
}

// FormatTimeframe is the inverse of ParseTimeframe, using the largest unit
// that divides d evenly.
func FormatTimeframe(d time.Duration) (string, error) {
	if d <= 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownTimeframe, d)
	}
	for _, u := range []struct {
		suffix string
		size   time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	} {
		if d%u.size == 0 {
			return fmt.Sprintf("%d%s", d/u.size, u.suffix), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTimeframe, d)
}
