// Package bar parses bar strings such as "1m", "4H" or "1d" and converts
// them to millisecond intervals.
package bar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"candlelite/internal/candleerr"
	"candlelite/internal/model"
)

// MinuteMs is the default number of milliseconds in one minute bar.
const MinuteMs int64 = 60000

// Bar is a sampling granularity: magnitude plus unit (s, m, h, d, w).
type Bar struct {
	N    int
	Unit byte
}

// String returns the canonical form, unit lowercased.
func (b Bar) String() string {
	return strconv.Itoa(b.N) + string(b.Unit)
}

// Interval returns the bar length in the unit of base (per minute).
// A zero base means MinuteMs.
func (b Bar) Interval(base int64) int64 {
	if base <= 0 {
		base = MinuteMs
	}
	n := int64(b.N)
	switch b.Unit {
	case 's':
		return base / 60 * n
	case 'm':
		return base * n
	case 'h':
		return base * 60 * n
	case 'd':
		return base * 60 * 24 * n
	case 'w':
		return base * 60 * 24 * 7 * n
	}
	return 0
}

// Parse splits a bar string into magnitude and unit. The unit suffix is
// case-insensitive.
func Parse(s string) (Bar, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Bar{}, candleerr.NewBarError("bar.Parse", s)
	}
	unit := strings.ToLower(s[len(s)-1:])[0]
	switch unit {
	case 's', 'm', 'h', 'd', 'w':
	default:
		return Bar{}, candleerr.NewBarError("bar.Parse", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:len(s)-1]))
	if err != nil || n <= 0 {
		return Bar{}, candleerr.NewBarError("bar.Parse", s)
	}
	return Bar{N: n, Unit: unit}, nil
}

// ParseInterval returns the interval of bar in milliseconds (for the
// default base). A zero base means MinuteMs.
func ParseInterval(s string, base int64) (int64, error) {
	b, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return b.Interval(base), nil
}

// InferInterval returns the smallest positive step between consecutive
// timestamps, 0 when the candle has none.
func InferInterval(c model.Candle) int64 {
	var min int64
	for i := 1; i < len(c); i++ {
		d := c.Timestamp(i) - c.Timestamp(i-1)
		if d <= 0 {
			continue
		}
		if min == 0 || d < min {
			min = d
		}
	}
	return min
}

// Infer guesses the bar of an unlabeled candle from its smallest step.
// The guess must be an integer number of seconds, minutes, hours or days;
// anything else is reported rather than rounded.
func Infer(c model.Candle, base int64) (string, error) {
	if base <= 0 {
		base = MinuteMs
	}
	if len(c) < 2 {
		return "", &candleerr.ExecutionError{
			Func: "bar.Infer",
			Msg:  fmt.Sprintf("need at least 2 rows to infer bar, got %d", len(c)),
		}
	}
	step := InferInterval(c)
	if step == 0 {
		return "", &candleerr.ExecutionError{Func: "bar.Infer", Msg: "no positive timestamp step"}
	}

	v := float64(step) / float64(base)
	var unit string
	switch {
	case v < 1:
		v = float64(step) / (float64(base) / 60)
		unit = "s"
	case v <= 59:
		unit = "m"
	case v <= 60*23:
		v = v / 60
		unit = "h"
	default:
		v = v / (60 * 24)
		unit = "d"
	}
	if v != math.Trunc(v) {
		return "", &candleerr.ExecutionError{
			Func: "bar.Infer",
			Msg:  fmt.Sprintf("The predict bar result is %s%s", strconv.FormatFloat(v, 'f', -1, 64), unit),
		}
	}
	return strconv.Itoa(int(v)) + unit, nil
}
