package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candlelite/internal/candleerr"
	"candlelite/internal/dates"
	"candlelite/internal/model"
	"candlelite/internal/saver"
)

const tz = "Asia/Shanghai"

var (
	spot = Partition{InstType: "SPOT", Timezone: tz, Bar: "1m"}
	ctx  = context.Background()
)

func newStore(t *testing.T, codec saver.Codec) *Store {
	t.Helper()
	s, err := New(Config{
		DateBaseDir: filepath.Join(t.TempDir(), "date"),
		FileBaseDir: filepath.Join(t.TempDir(), "file"),
		Timezone:    "UTC",
		Bar:         "1m",
		Codec:       codec,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return s
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	require.NoError(t, err)
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	require.NoError(t, err)
	return d
}

// minutes builds n one-minute rows starting at from, with one extra column.
func minutes(from time.Time, n int) model.Candle {
	c := make(model.Candle, n)
	for i := range c {
		f := float64(i)
		c[i] = []float64{
			float64(from.UnixMilli() + int64(i)*60000),
			100 + f*0.25, 101 + f*0.25, 99.5 + f*0.25, 100.125 + f*0.25, 3.75 + f, float64(i % 7),
		}
	}
	return c
}

func week(t *testing.T) model.Candle {
	return minutes(day(t, "2024-01-01"), 7*1440)
}

func TestDatePathLayout(t *testing.T) {
	s := newStore(t, nil)
	p, err := s.DatePath(spot.Key("BTC-USDT"), "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Config().DateBaseDir, "SPOT-AsiaShanghai-1m", "2024-01", "2024-01-02", "BTC-USDT.csv"), p)

	p, err = s.FilePath(Partition{InstType: "SWAP", Bar: "1d"}.Key("ETH"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Config().FileBaseDir, "SWAP-UTC-1d-FILE", "ETH.csv"), p)
}

func TestSaveLoadByDateRoundTrip(t *testing.T) {
	for _, format := range []string{"csv", "json", "parquet"} {
		t.Run(format, func(t *testing.T) {
			s := newStore(t, saver.NewCodec(format))
			key := spot.Key("BTC-USDT")
			src := week(t)

			require.NoError(t, s.SaveByDate(ctx, src, key, "2024-01-01", "2024-01-07", SaveOptions{}))
			got, err := s.LoadByDate(ctx, key, "2024-01-01", "2024-01-07", LoadOptions{})
			require.NoError(t, err)
			assert.Equal(t, src, got)
		})
	}
}

func TestLoadByDateColumns(t *testing.T) {
	s := newStore(t, nil)
	key := spot.Key("BTC-USDT")
	src := minutes(day(t, "2024-01-01"), 1440)
	require.NoError(t, s.SaveByDate(ctx, src, key, "2024-01-01", "2024-01-01", SaveOptions{}))

	got, err := s.LoadByDate(ctx, key, "2024-01-01", "2024-01-01", LoadOptions{Columns: []int{0, 4}})
	require.NoError(t, err)
	require.Len(t, got, 1440)
	assert.Equal(t, []float64{src[10][0], src[10][4]}, got[10])
}

func TestGapDetection(t *testing.T) {
	s := newStore(t, nil)
	key := spot.Key("BTC-USDT")
	require.NoError(t, s.SaveByDate(ctx, week(t), key, "2024-01-01", "2024-01-07", SaveOptions{}))

	gap, err := s.DatePath(key, "2024-01-04")
	require.NoError(t, err)
	require.NoError(t, os.Remove(gap))

	check, err := s.CheckCandleDatePath(key, "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.False(t, check.OK)
	assert.Equal(t, []MissingDate{{Date: "2024-01-04", Path: gap}}, check.Missing)

	res, err := s.GetCandleDates(key)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "2024-01-01", dates.Format(res.Start))
	assert.Equal(t, "2024-01-07", dates.Format(res.End))
	require.Len(t, res.Missing, 1)
	assert.Equal(t, "2024-01-04", dates.Format(res.Missing[0]))

	_, err = s.LoadByDate(ctx, key, "2024-01-01", "2024-01-07", LoadOptions{})
	var fe *candleerr.FileNotExistError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"2024-01-04"}, fe.Dates)
}

func TestCheckMissingNewestFirst(t *testing.T) {
	s := newStore(t, nil)
	check, err := s.CheckCandleDatePath(spot.Key("X"), "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, check.MissingDates())
}

func TestGetCandleDatesNoData(t *testing.T) {
	s := newStore(t, nil)
	res, err := s.GetCandleDates(spot.Key("BTC-USDT"))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "no data", res.Msg)

	_, err = s.LoadAll(ctx, spot.Key("BTC-USDT"), LoadOptions{})
	var de *candleerr.DatesMissingError
	assert.True(t, errors.As(err, &de))
}

func TestSaveByDateKeepsEarlierDaysOnFailure(t *testing.T) {
	s := newStore(t, nil)
	key := spot.Key("BTC-USDT")
	src := week(t)
	// drop one minute in the middle of the third day
	broken := append(model.Candle{}, src[:2*1440+600]...)
	broken = append(broken, src[2*1440+601:]...)

	err := s.SaveByDate(ctx, broken, key, "2024-01-01", "2024-01-07", SaveOptions{})
	var ie *candleerr.IntervalError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "BTC-USDT", ie.Symbol)

	check, err := s.CheckCandleDatePath(key, "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-07", "2024-01-06", "2024-01-05", "2024-01-04", "2024-01-03"}, check.MissingDates())
}

func TestSaveByDateStartEndErrors(t *testing.T) {
	s := newStore(t, nil)
	d := day(t, "2024-01-01")

	late := minutes(d.Add(5*time.Minute), 1435)
	err := s.SaveByDate(ctx, late, spot.Key("A"), d, d, SaveOptions{})
	var se *candleerr.StartError
	assert.True(t, errors.As(err, &se))

	short := minutes(d, 1430)
	err = s.SaveByDate(ctx, short, spot.Key("A"), d, d, SaveOptions{})
	var ee *candleerr.EndError
	assert.True(t, errors.As(err, &ee))

	require.NoError(t, s.SaveByDate(ctx, short, spot.Key("A"), d, d, SaveOptions{Checks: Checks{SkipEnd: true}}))
	_, err = s.LoadByDate(ctx, spot.Key("A"), d, d, LoadOptions{})
	assert.True(t, errors.As(err, &ee))
	got, err := s.LoadByDate(ctx, spot.Key("A"), d, d, LoadOptions{Checks: Checks{SkipEnd: true}})
	require.NoError(t, err)
	assert.Len(t, got, 1430)
}

func TestSaveByDateKeepExisting(t *testing.T) {
	s := newStore(t, nil)
	key := spot.Key("BTC-USDT")
	d := day(t, "2024-01-01")
	first := minutes(d, 1440)
	require.NoError(t, s.SaveByDate(ctx, first, key, d, d, SaveOptions{}))

	second := first.Clone()
	second[0][1] = 1
	require.NoError(t, s.SaveByDate(ctx, second, key, d, d, SaveOptions{KeepExisting: true}))
	got, err := s.LoadByDate(ctx, key, d, d, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, first[0][1], got[0][1])

	require.NoError(t, s.SaveByDate(ctx, second, key, d, d, SaveOptions{}))
	got, err = s.LoadByDate(ctx, key, d, d, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got[0][1])
}

func saveDays(t *testing.T, s *Store, symbol, from string, days int) {
	t.Helper()
	d := day(t, from)
	end := d.AddDate(0, 0, days-1)
	require.NoError(t, s.SaveByDate(ctx, minutes(d, days*1440), spot.Key(symbol), d, end, SaveOptions{}))
}

func TestLoadColumnsOutOfRange(t *testing.T) {
	s := newStore(t, nil)
	saveDays(t, s, "BTC-USDT", "2024-01-01", 1)
	saveDays(t, s, "ETH-USDT", "2024-01-01", 1)
	bad := LoadOptions{Columns: []int{0, 99}}

	_, err := s.LoadByDate(ctx, spot.Key("BTC-USDT"), "2024-01-01", "2024-01-01", bad)
	var pe *candleerr.ParamError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Msg, "column 99")

	_, err = s.LoadMapByDate(ctx, spot, nil, "2024-01-01", "2024-01-01", MapOptions{LoadOptions: bad, Workers: 2})
	assert.True(t, errors.As(err, &pe))

	m, err := s.LoadMapByDate(ctx, spot, nil, "2024-01-01", "2024-01-01", MapOptions{LoadOptions: bad, SkipOnError: true})
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = s.LoadByDate(ctx, spot.Key("BTC-USDT"), "2024-01-01", "2024-01-01", LoadOptions{Columns: []int{-1}})
	assert.True(t, errors.As(err, &pe))
}

func TestLoadMapByDateDiscovery(t *testing.T) {
	s := newStore(t, nil)
	saveDays(t, s, "ETH-USDT", "2024-01-01", 3)
	saveDays(t, s, "BTC-USDT", "2024-01-01", 3)
	saveDays(t, s, "BTC-USDC", "2024-01-01", 3)
	saveDays(t, s, "XRP-USDT", "2024-01-01", 2)

	m, err := s.LoadMapByDate(ctx, spot, nil, "2024-01-01", "2024-01-03", MapOptions{
		SymbolFilter: SymbolFilter{EndsWith: "-USDT"},
		Workers:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, m.Symbols())
	assert.Len(t, m["ETH-USDT"], 3*1440)

	all, err := s.GetSymbolsAll(spot)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDC", "BTC-USDT", "ETH-USDT", "XRP-USDT"}, all)
}

func TestLoadMapByDateSkipOnError(t *testing.T) {
	s := newStore(t, nil)
	saveDays(t, s, "BTC-USDT", "2024-01-01", 2)
	saveDays(t, s, "ETH-USDT", "2024-01-01", 2)
	symbols := []string{"BTC-USDT", "ETH-USDT", "NOPE"}

	_, err := s.LoadMapByDate(ctx, spot, symbols, "2024-01-01", "2024-01-02", MapOptions{Workers: 2})
	var fe *candleerr.FileNotExistError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "NOPE", fe.Symbol)

	m, err := s.LoadMapByDate(ctx, spot, symbols, "2024-01-01", "2024-01-02", MapOptions{Workers: 2, SkipOnError: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, m.Symbols())
}

func TestLoadMapByDateReturnsFirstFailingSymbol(t *testing.T) {
	s := newStore(t, nil)
	saveDays(t, s, "BTC-USDT", "2024-01-01", 2)
	saveDays(t, s, "ETH-USDT", "2024-01-01", 1)
	symbols := []string{"ZZZ", "BTC-USDT", "ETH-USDT", "AAA"}

	for i := 0; i < 5; i++ {
		_, err := s.LoadMapByDate(ctx, spot, symbols, "2024-01-01", "2024-01-02", MapOptions{Workers: 4})
		var fe *candleerr.FileNotExistError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "AAA", fe.Symbol)
	}
}

func TestLoadAllAndMapAll(t *testing.T) {
	s := newStore(t, nil)
	saveDays(t, s, "BTC-USDT", "2024-01-30", 4)
	saveDays(t, s, "ETH-USDT", "2024-01-31", 1)

	c, err := s.LoadAll(ctx, spot.Key("BTC-USDT"), LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, c, 4*1440)

	m, err := s.LoadMapAll(ctx, spot, nil, MapOptions{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, m.Symbols())
	assert.Len(t, m["ETH-USDT"], 1440)
}

func TestSaveLoadByFile(t *testing.T) {
	s := newStore(t, saver.ParquetCodec{})
	daily := Partition{InstType: "SPOT", Timezone: tz, Bar: "1d"}
	c := make(model.Candle, 30)
	for i := range c {
		c[i] = []float64{float64(day(t, "2024-01-01").AddDate(0, 0, i).UnixMilli()), 1, 2, 0.5, 1.5, 10}
	}
	// reverse order: normalization sorts before writing
	rev := make(model.Candle, len(c))
	for i := range c {
		rev[len(c)-1-i] = c[i]
	}

	err := s.SaveByFile(ctx, rev, daily.Key("BTC-USDT"), SaveOptions{})
	var ie *candleerr.IntervalError
	require.True(t, errors.As(err, &ie), "interval is checked before normalization")

	m := model.CandleMap{"BTC-USDT": c, "ETH-USDT": c}
	require.NoError(t, s.SaveMapByFile(ctx, m, daily, nil, SaveOptions{}))

	ok, _, err := s.CheckCandleFilePath(daily.Key("ETH-USDT"))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.LoadByFile(ctx, daily.Key("BTC-USDT"), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = s.LoadByFile(ctx, Partition{InstType: "SPOT", Timezone: tz, Bar: "1h"}.Key("BTC-USDT"), LoadOptions{})
	assert.Error(t, err)

	loaded, err := s.LoadMapByFile(ctx, daily, nil, MapOptions{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, loaded.Symbols())
}

func TestSaveMapByDateStopsOnFirstFailure(t *testing.T) {
	s := newStore(t, nil)
	d := day(t, "2024-01-01")
	good := minutes(d, 1440)
	bad := minutes(d, 1000)
	m := model.CandleMap{"A": good, "B": bad, "C": good}

	err := s.SaveMapByDate(ctx, m, spot, nil, d, d, SaveOptions{})
	var ee *candleerr.EndError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "B", ee.Symbol)

	for sym, want := range map[string]bool{"A": true, "B": false, "C": false} {
		p, err := s.DatePath(spot.Key(sym), d)
		require.NoError(t, err)
		assert.Equal(t, want, isFile(p), sym)
	}

	err = s.SaveMapByDate(ctx, m, spot, []string{"Z"}, d, d, SaveOptions{})
	var pe *candleerr.ParamError
	assert.True(t, errors.As(err, &pe))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{DateBaseDir: "x", Bar: "7q"})
	assert.Error(t, err)
	_, err = New(Config{DateBaseDir: "x", Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
