// Package candle normalizes tabular input into candles and slices or
// merges them.
package candle

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"candlelite/internal/candleerr"
	"candlelite/internal/dates"
	"candlelite/internal/model"
)

// Table is any external tabular structure whose first column is the
// timestamp.
type Table interface {
	Rows() [][]float64
}

type options struct {
	dropDuplicate bool
	sort          bool
}

// Option tunes ToCandle and ConcatCandle.
type Option func(*options)

// WithDropDuplicate toggles removal of rows with a repeated timestamp
// (the first occurrence wins). Default true.
func WithDropDuplicate(v bool) Option { return func(o *options) { o.dropDuplicate = v } }

// WithSort toggles ascending sort by timestamp. Default true.
func WithSort(v bool) Option { return func(o *options) { o.sort = v } }

func newOptions(opts []Option) options {
	o := options{dropDuplicate: true, sort: true}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ToCandle converts input into a candle, dropping duplicate timestamps and
// sorting by default. Supported inputs: model.Candle, [][]float64, [][]any
// of numbers, [][]string of numeric text, and Table.
func ToCandle(input any, opts ...Option) (model.Candle, error) {
	rows, err := coerce("ToCandle", input)
	if err != nil {
		return nil, err
	}
	return finish(rows, newOptions(opts)), nil
}

// ConcatCandle concatenates the rows of every input and normalizes the
// result like ToCandle.
func ConcatCandle(inputs []any, opts ...Option) (model.Candle, error) {
	var all model.Candle
	width := -1
	for i, in := range inputs {
		rows, err := coerce("ConcatCandle", in)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		if width >= 0 && rows.Width() != width {
			return nil, &candleerr.ParamError{
				Func: "ConcatCandle",
				Msg:  fmt.Sprintf("input %d has %d columns, expected %d", i, rows.Width(), width),
			}
		}
		width = rows.Width()
		all = append(all, rows...)
	}
	return finish(all, newOptions(opts)), nil
}

func finish(rows model.Candle, o options) model.Candle {
	if o.dropDuplicate {
		seen := make(map[float64]struct{}, len(rows))
		kept := rows[:0]
		for _, r := range rows {
			if _, ok := seen[r[model.ColTimestamp]]; ok {
				continue
			}
			seen[r[model.ColTimestamp]] = struct{}{}
			kept = append(kept, r)
		}
		rows = kept
	}
	if o.sort {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i][model.ColTimestamp] < rows[j][model.ColTimestamp]
		})
	}
	if rows == nil {
		return model.Candle{}
	}
	return rows
}

// coerce copies input into a fresh, rectangular candle.
func coerce(fn string, input any) (model.Candle, error) {
	var out model.Candle
	switch x := input.(type) {
	case model.Candle:
		out = x.Clone()
	case [][]float64:
		out = model.Candle(x).Clone()
	case Table:
		out = model.Candle(x.Rows()).Clone()
	case [][]any:
		out = make(model.Candle, len(x))
		for i, r := range x {
			row := make([]float64, len(r))
			for j, cell := range r {
				v, err := toFloat(cell)
				if err != nil {
					return nil, &candleerr.ParamError{Func: fn, Msg: fmt.Sprintf("row %d col %d: %v", i, j, err)}
				}
				row[j] = v
			}
			out[i] = row
		}
	case [][]string:
		out = make(model.Candle, len(x))
		for i, r := range x {
			row := make([]float64, len(r))
			for j, cell := range r {
				v, err := parseCell(cell)
				if err != nil {
					return nil, &candleerr.ParamError{Func: fn, Msg: fmt.Sprintf("row %d col %d: %v", i, j, err)}
				}
				row[j] = v
			}
			out[i] = row
		}
	default:
		return nil, &candleerr.ParamError{
			Func: fn,
			Msg:  fmt.Sprintf("input candle type is %T, candle type must in [model.Candle,[][]float64,[][]any,[][]string,candle.Table]", input),
		}
	}
	for i, r := range out {
		if len(r) == 0 {
			return nil, &candleerr.ParamError{Func: fn, Msg: fmt.Sprintf("row %d is empty", i)}
		}
		if len(r) != len(out[0]) {
			return nil, &candleerr.ParamError{Func: fn, Msg: fmt.Sprintf("row %d has %d columns, expected %d", i, len(r), len(out[0]))}
		}
	}
	return out, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		return parseCell(x)
	case nil:
		return math.NaN(), nil
	}
	return 0, fmt.Errorf("unsupported cell type %T", v)
}

// ExtractCandle returns the rows whose timestamp lies in [start, end].
// A nil start means 0 and a nil end means the candle's largest timestamp.
func ExtractCandle(c model.Candle, start, end any, loc *time.Location) (model.Candle, error) {
	if len(c) == 0 {
		return model.Candle{}, nil
	}
	s, err := dates.ToTS(start, loc, 0)
	if err != nil {
		return nil, &candleerr.ParamError{Func: "ExtractCandle", Msg: err.Error()}
	}
	e, err := dates.ToTS(end, loc, int64(c.MaxTS()))
	if err != nil {
		return nil, &candleerr.ParamError{Func: "ExtractCandle", Msg: err.Error()}
	}
	return Slice(c, s, e), nil
}

// Slice returns the rows with startTS <= ts <= endTS.
func Slice(c model.Candle, startTS, endTS int64) model.Candle {
	out := make(model.Candle, 0)
	for _, r := range c {
		ts := r[model.ColTimestamp]
		if ts >= float64(startTS) && ts <= float64(endTS) {
			out = append(out, r)
		}
	}
	return out
}

// IndexByDate returns the row index whose timestamp equals date, def when
// date is nil and -1 when no row matches.
func IndexByDate(c model.Candle, date any, loc *time.Location, def int) (int, error) {
	if date == nil {
		return def, nil
	}
	ts, err := dates.ToTS(date, loc, 0)
	if err != nil {
		return 0, &candleerr.ParamError{Func: "IndexByDate", Msg: err.Error()}
	}
	for i := range c {
		if c.Timestamp(i) == ts {
			return i, nil
		}
	}
	return -1, nil
}
