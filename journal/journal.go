// journal/journal.go
package journal

import (
	"context"

	"github.com/rustyeddy/btanalysis/analysis"
)

// Store persists trades.
type Store interface {
	RecordTrade(analysis.Trade) error
	Close() error
}

// Source supplies the trades an analysis runs over.
type Source interface {
	LoadTrades(ctx context.Context) ([]analysis.Trade, error)
}
