package analysis

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyGrid is returned when a grid is required but there are no trades
	// to build one from.
	ErrEmptyGrid      = errors.New("analysis: empty grid")
	ErrInvalidPeriod  = errors.New("analysis: period must be positive")
	ErrInvalidBinSize = errors.New("analysis: invalid bin size")
)

// UnorderedInputError reports a daily profit series that is not strictly
// ascending by date. Index is the position of the first offending record.
type UnorderedInputError struct {
	Index int
	Prev  time.Time
	Date  time.Time
}

func (e *UnorderedInputError) Error() string {
	return fmt.Sprintf("daily profit %d: date %s does not follow %s",
		e.Index, e.Date.Format("2006-01-02"), e.Prev.Format("2006-01-02"))
}

// InvalidIntervalError reports a trade whose open/close times cannot form an
// interval.
type InvalidIntervalError struct {
	Index  int
	ID     string
	Pair   string
	Open   time.Time
	Close  time.Time
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	id := e.ID
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("trade %d (id %s, pair %s): %s", e.Index, id, e.Pair, e.Reason)
}

// NonFiniteValueError reports a NaN or infinite amount in an input record.
// Record names the kind of input ("daily profit", "trade").
type NonFiniteValueError struct {
	Record string
	Index  int
	Field  string
	Value  float64
}

func (e *NonFiniteValueError) Error() string {
	return fmt.Sprintf("%s %d: %s is %v", e.Record, e.Index, e.Field, e.Value)
}
