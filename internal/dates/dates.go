// Package dates converts the date-like values accepted by the candle API
// (millisecond timestamps, date strings, time.Time) to timestamps and
// calendar days in an exchange timezone.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the layout of day directory names.
const DayLayout = "2006-01-02"

// MonthLayout is the layout of month directory names.
const MonthLayout = "2006-01"

var layouts = []string{
	DayLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// Location loads an IANA zone. An empty name means UTC.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ToTime converts v to a time in loc. Numbers are millisecond epochs,
// strings are parsed with the supported layouts or as a number.
func ToTime(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case time.Time:
		return x.In(loc), nil
	case *time.Time:
		if x == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return x.In(loc), nil
	case int:
		return time.UnixMilli(int64(x)).In(loc), nil
	case int64:
		return time.UnixMilli(x).In(loc), nil
	case float64:
		return time.UnixMilli(int64(x)).In(loc), nil
	case string:
		s := strings.TrimSpace(x)
		for _, l := range layouts {
			if t, err := time.ParseInLocation(l, s, loc); err == nil {
				return t.In(loc), nil
			}
		}
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			return time.UnixMilli(int64(ms)).In(loc), nil
		}
		return time.Time{}, fmt.Errorf("unsupported date string %q", x)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

// ToTS converts v to a millisecond timestamp. nil yields def.
func ToTS(v any, loc *time.Location, def int64) (int64, error) {
	if v == nil {
		return def, nil
	}
	t, err := ToTime(v, loc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Tomorrow returns midnight of the day after t.
func Tomorrow(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// ToDay converts v to midnight of its calendar day in loc.
func ToDay(v any, loc *time.Location) (time.Time, error) {
	t, err := ToTime(v, loc)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}

// RangeDates returns every calendar day from start to end, both inclusive.
func RangeDates(start, end any, loc *time.Location) ([]time.Time, error) {
	s, err := ToDay(start, loc)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	e, err := ToDay(end, loc)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}
	var out []time.Time
	for d := s; !d.After(e); d = Tomorrow(d) {
		out = append(out, d)
	}
	return out, nil
}

// Format returns the YYYY-MM-DD form of t.
func Format(t time.Time) string { return t.Format(DayLayout) }
