// journal/schema.go
package journal

// Schema matches the columns of a freqtrade trades table that the analysis
// reads, so an existing trade database can be opened directly.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pair TEXT NOT NULL,
	is_open BOOLEAN NOT NULL,
	open_date DATETIME NOT NULL,
	close_date DATETIME,
	close_profit REAL,
	close_profit_abs REAL,
	exit_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_trades_pair ON trades(pair);
CREATE INDEX IF NOT EXISTS idx_trades_close_date ON trades(close_date);
`

// dbTimeLayout is how dates are written; it sorts lexically.
const dbTimeLayout = "2006-01-02 15:04:05.000000"
