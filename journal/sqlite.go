package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/btanalysis/analysis"
)

type SQLite struct {
	db *sql.DB

	// reasonExpr selects the exit reason; reasonCol is the column RecordTrade
	// writes it to. Older freqtrade databases name it sell_reason.
	reasonExpr string
	reasonCol  string
}

// NewSQLite opens or creates a trade database. The schema is only applied
// when the trades table does not exist yet.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	exists, err := hasTradesTable(db)
	if err == nil && !exists {
		_, err = db.Exec(Schema)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newSQLite(db)
}

// OpenSQLite opens an existing trade database read-only, such as a live
// freqtrade tradesv3.sqlite.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}

	exists, err := hasTradesTable(db)
	if err == nil && !exists {
		err = fmt.Errorf("%s has no trades table", path)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newSQLite(db)
}

func newSQLite(db *sql.DB) (*SQLite, error) {
	cols, err := tableColumns(db, "trades")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	j := &SQLite{db: db, reasonExpr: "NULL"}
	switch {
	case cols["exit_reason"] && cols["sell_reason"]:
		j.reasonExpr, j.reasonCol = "COALESCE(exit_reason, sell_reason)", "exit_reason"
	case cols["exit_reason"]:
		j.reasonExpr, j.reasonCol = "exit_reason", "exit_reason"
	case cols["sell_reason"]:
		j.reasonExpr, j.reasonCol = "sell_reason", "sell_reason"
	}
	return j, nil
}

func hasTradesTable(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'trades'`).Scan(&n)
	return n > 0, err
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(`PRAGMA table_info(` + table + `)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// RecordTrade inserts a trade. Numeric IDs are kept; any other ID is
// replaced by the database's.
func (j *SQLite) RecordTrade(t analysis.Trade) error {
	return j.insert(context.Background(), j.db, t)
}

// RecordTrades inserts trades in a single transaction.
func (j *SQLite) RecordTrades(ctx context.Context, trades []analysis.Trade) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i, t := range trades {
		if err := j.insert(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (j *SQLite) insert(ctx context.Context, db execer, t analysis.Trade) error {
	var id any
	if n, err := strconv.ParseInt(t.ID, 10, 64); err == nil {
		id = n
	}

	var closeDate, closeProfit, closeProfitAbs any
	if !t.IsOpen() {
		closeDate = t.CloseTime.UTC().Format(dbTimeLayout)
		closeProfit = t.ProfitRatio
		closeProfitAbs = t.ProfitAbs
	}

	cols := "id, pair, is_open, open_date, close_date, close_profit, close_profit_abs"
	marks := "?, ?, ?, ?, ?, ?, ?"
	args := []any{
		id, t.Pair, t.IsOpen(), t.OpenTime.UTC().Format(dbTimeLayout),
		closeDate, closeProfit, closeProfitAbs,
	}
	if j.reasonCol != "" {
		cols += ", " + j.reasonCol
		marks += ", ?"
		args = append(args, t.ExitReason)
	}

	_, err := db.ExecContext(ctx, `INSERT INTO trades (`+cols+`) VALUES (`+marks+`)`, args...)
	return err
}

func (j *SQLite) selectTrades() string {
	return `
	SELECT id, pair, is_open, open_date, close_date, close_profit, close_profit_abs, ` + j.reasonExpr + `
	FROM trades`
}

// LoadTrades returns every trade ordered by open date.
func (j *SQLite) LoadTrades(ctx context.Context) ([]analysis.Trade, error) {
	return j.query(ctx, j.selectTrades()+` ORDER BY open_date ASC, id ASC`)
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (analysis.Trade, error) {
	row := j.db.QueryRowContext(ctx, j.selectTrades()+` WHERE id = ?`, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analysis.Trade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return analysis.Trade{}, err
	}
	return t, nil
}

// ListTradesByPair returns the trades of one pair ordered by open date.
func (j *SQLite) ListTradesByPair(ctx context.Context, pair string) ([]analysis.Trade, error) {
	return j.query(ctx, j.selectTrades()+` WHERE pair = ? ORDER BY open_date ASC, id ASC`, pair)
}

// ListTradesClosedBetween returns trades whose close_date is within [start, end).
func (j *SQLite) ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]analysis.Trade, error) {
	return j.query(ctx, j.selectTrades()+`
		WHERE close_date >= ? AND close_date < ?
		ORDER BY close_date ASC, id ASC`,
		start.UTC().Format(dbTimeLayout), end.UTC().Format(dbTimeLayout))
}

func (j *SQLite) query(ctx context.Context, q string, args ...any) ([]analysis.Trade, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analysis.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (analysis.Trade, error) {
	var (
		id             int64
		t              analysis.Trade
		isOpen         bool
		openDate       time.Time
		closeDate      sql.NullTime
		closeProfit    sql.NullFloat64
		closeProfitAbs sql.NullFloat64
		exitReason     sql.NullString
	)
	if err := s.Scan(&id, &t.Pair, &isOpen, &openDate, &closeDate, &closeProfit, &closeProfitAbs, &exitReason); err != nil {
		return analysis.Trade{}, err
	}

	t.ID = strconv.FormatInt(id, 10)
	t.OpenTime = openDate.UTC()
	if !isOpen && closeDate.Valid {
		t.CloseTime = closeDate.Time.UTC()
	}
	t.ProfitRatio = closeProfit.Float64
	t.ProfitAbs = closeProfitAbs.Float64
	t.ExitReason = exitReason.String
	return t, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
