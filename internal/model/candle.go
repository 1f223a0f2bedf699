package model

import (
	"math"
	"sort"
	"strconv"
)

// Column positions inside a candle row.
const (
	ColTimestamp = 0
	ColOpen      = 1
	ColHigh      = 2
	ColLow       = 3
	ColClose     = 4
	ColVolume    = 5

	// BaseWidth is the number of mandatory columns (t,o,h,l,c,v).
	BaseWidth = 6
)

// Candle is an ordered series of OHLCV rows.
// Row layout: [ts(ms), open, high, low, close, volume, extra...].
type Candle [][]float64

// Len returns the number of rows.
func (c Candle) Len() int { return len(c) }

// Width returns the column count of the first row, 0 for an empty candle.
func (c Candle) Width() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}

// Timestamp returns the timestamp of row i as int64 milliseconds.
func (c Candle) Timestamp(i int) int64 { return int64(c[i][ColTimestamp]) }

// FirstTS returns the first row timestamp. Panics on an empty candle.
func (c Candle) FirstTS() int64 { return c.Timestamp(0) }

// LastTS returns the last row timestamp. Panics on an empty candle.
func (c Candle) LastTS() int64 { return c.Timestamp(len(c) - 1) }

// MaxTS returns the largest timestamp in the candle (NaN-free input assumed).
func (c Candle) MaxTS() float64 {
	max := math.Inf(-1)
	for _, r := range c {
		if r[ColTimestamp] > max {
			max = r[ColTimestamp]
		}
	}
	return max
}

// Clone deep-copies the candle.
func (c Candle) Clone() Candle {
	if c == nil {
		return nil
	}
	out := make(Candle, len(c))
	for i, r := range c {
		row := make([]float64, len(r))
		copy(row, r)
		out[i] = row
	}
	return out
}

// Columns projects every row to the given column indexes, in that order.
// An empty index list returns the candle unchanged.
func (c Candle) Columns(idx []int) Candle {
	if len(idx) == 0 {
		return c
	}
	out := make(Candle, len(c))
	for i, r := range c {
		row := make([]float64, len(idx))
		for j, k := range idx {
			row[j] = r[k]
		}
		out[i] = row
	}
	return out
}

// Header returns the column names used by text shards for a row width.
func Header(width int) []string {
	names := []string{"t", "o", "h", "l", "c", "v"}
	if width <= len(names) {
		return names[:width]
	}
	for i := len(names); i < width; i++ {
		names = append(names, "x"+strconv.Itoa(i))
	}
	return names
}

// CandleMap maps symbol to candle. Iterate with Symbols for a stable order.
type CandleMap map[string]Candle

// Symbols returns the map keys sorted by name.
func (m CandleMap) Symbols() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
