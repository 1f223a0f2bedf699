// Package valid checks candle continuity: interval regularity, first and
// last timestamps, and row count.
package valid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"candlelite/internal/bar"
	"candlelite/internal/candleerr"
	"candlelite/internal/dates"
	"candlelite/internal/model"
)

// Result is the outcome of one check. Detail carries structured context
// for failures; Msg is the human-readable reason.
type Result struct {
	OK     bool
	Detail map[string]any
	Msg    string
}

func pass() Result { return Result{OK: true, Detail: map[string]any{}} }

func fail(msg string, detail map[string]any) Result {
	if detail == nil {
		detail = map[string]any{}
	}
	return Result{Detail: detail, Msg: msg}
}

// Empty is the result every check returns for an empty candle.
func Empty() Result { return fail("[candle empty]", nil) }

// Interval checks that every consecutive timestamp step equals interval
// (ms). When interval is 0 it is derived from barStr; one of them must be set.
func Interval(c model.Candle, interval int64, barStr string) (Result, error) {
	if len(c) == 0 {
		return Empty(), nil
	}
	if interval == 0 {
		if barStr == "" {
			return Result{}, &candleerr.ParamError{
				Func: "valid.Interval",
				Msg:  "Interval and bar cannot be None at the same time",
			}
		}
		iv, err := bar.ParseInterval(barStr, bar.MinuteMs)
		if err != nil {
			return Result{}, err
		}
		interval = iv
	}

	bad := map[int64]struct{}{}
	for i := 1; i < len(c); i++ {
		if d := c.Timestamp(i) - c.Timestamp(i-1); d != interval {
			bad[d] = struct{}{}
		}
	}
	if len(bad) == 0 {
		return pass(), nil
	}
	wrong := make([]int64, 0, len(bad))
	for d := range bad {
		wrong = append(wrong, d)
	}
	sort.Slice(wrong, func(i, j int) bool { return wrong[i] < wrong[j] })
	parts := make([]string, len(wrong))
	for i, d := range wrong {
		parts[i] = strconv.FormatInt(d, 10)
	}
	msg := fmt.Sprintf("[valid candle interval error]: correct_interval=%d error_interval=[%s]",
		interval, strings.Join(parts, ", "))
	return fail(msg, map[string]any{"interval": interval, "errorIntervals": wrong}), nil
}

// Start checks that the first row's timestamp equals startTS.
func Start(c model.Candle, startTS int64) Result {
	if len(c) == 0 {
		return Empty()
	}
	if got := c.FirstTS(); got != startTS {
		return fail(
			fmt.Sprintf("[valid candle start error]: correct_ts=%d error_ts=%d", startTS, got),
			map[string]any{"expected": startTS, "actual": got},
		)
	}
	return pass()
}

// End checks that the last row's timestamp equals endTS.
func End(c model.Candle, endTS int64) Result {
	if len(c) == 0 {
		return Empty()
	}
	if got := c.LastTS(); got != endTS {
		return fail(
			fmt.Sprintf("[valid candle end error]: correct_ts=%d error_ts=%d", endTS, got),
			map[string]any{"expected": endTS, "actual": got},
		)
	}
	return pass()
}

// Length checks the row count.
func Length(c model.Candle, n int) Result {
	if len(c) == 0 {
		return Empty()
	}
	if len(c) != n {
		return fail(
			fmt.Sprintf("[valid candle length error]: correct_length=%d error_length=%d", n, len(c)),
			map[string]any{"expected": n, "actual": len(c)},
		)
	}
	return pass()
}

// DayStart is the expected first timestamp of a day shard.
func DayStart(day time.Time) int64 {
	return dates.StartOfDay(day).UnixMilli()
}

// DayEnd is the expected last timestamp of a day shard: the last bar that
// fits entirely inside the day.
func DayEnd(day time.Time, intervalMs int64) int64 {
	return dates.Tomorrow(day).UnixMilli() - intervalMs
}
