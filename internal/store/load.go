package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"candlelite/internal/candle"
	"candlelite/internal/candleerr"
	"candlelite/internal/dates"
	"candlelite/internal/model"
	"candlelite/internal/pool"
	"candlelite/internal/valid"
)

// Checks switches off individual validations. The zero value runs all of
// them.
type Checks struct {
	SkipInterval bool
	SkipStart    bool
	SkipEnd      bool
}

// LoadOptions tunes single-symbol loads.
type LoadOptions struct {
	Checks
	// Columns projects the result to these column indexes; empty keeps all.
	Columns []int
	// Path overrides the flat-file path (LoadByFile) or flat directory
	// (LoadMapByFile).
	Path string
}

// MapOptions tunes multi-symbol loads.
type MapOptions struct {
	LoadOptions
	SymbolFilter
	// Workers overrides Config.Workers when positive.
	Workers int
	// SkipOnError drops failing symbols even if Config.SkipOnError is off.
	SkipOnError bool
}

func (s *Store) poolOptions(o MapOptions) pool.Options {
	workers := s.cfg.Workers
	if o.Workers > 0 {
		workers = o.Workers
	}
	return pool.Options{
		Workers:     workers,
		SkipOnError: s.cfg.SkipOnError || o.SkipOnError,
		Logger:      s.logger,
	}
}

// LoadByDate reads the shards of key for every day in [start, end], merges
// them and validates the result against the bar and the range boundaries.
// Any missing shard fails the call with a FileNotExistError.
func (s *Store) LoadByDate(ctx context.Context, key Key, start, end any, opts LoadOptions) (model.Candle, error) {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return nil, err
	}
	days, err := dates.RangeDates(start, end, p.loc)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, &candleerr.ParamError{Func: "LoadByDate", Msg: fmt.Sprintf("empty date range %v..%v", start, end)}
	}
	if check := s.checkDays(p, key.Symbol, days); !check.OK {
		return nil, &candleerr.FileNotExistError{Symbol: key.Symbol, Dates: check.MissingDates()}
	}

	shards := make([]any, 0, len(days))
	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.datePath(p, key.Symbol, d)
		c, err := s.codec.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		shards = append(shards, c)
	}
	c, err := candle.ConcatCandle(shards)
	if err != nil {
		return nil, err
	}

	if err := s.validate(c, key.Symbol, p, days[0], days[len(days)-1], opts.Checks); err != nil {
		return nil, err
	}
	s.logger.Debug("loaded by date", "symbol", key.Symbol, "from", dates.Format(days[0]), "to", dates.Format(days[len(days)-1]), "rows", len(c))
	return project("LoadByDate", c, opts.Columns)
}

// validate runs the enabled checks of a day span, first day to last day.
func (s *Store) validate(c model.Candle, symbol string, p partition, first, last time.Time, checks Checks) error {
	if !checks.SkipInterval {
		r, err := valid.Interval(c, p.interval, "")
		if err != nil {
			return err
		}
		if !r.OK {
			return &candleerr.IntervalError{Symbol: symbol, Msg: r.Msg}
		}
	}
	if !checks.SkipStart {
		if r := valid.Start(c, valid.DayStart(first)); !r.OK {
			return &candleerr.StartError{Symbol: symbol, Msg: r.Msg}
		}
	}
	if !checks.SkipEnd {
		if r := valid.End(c, valid.DayEnd(last, p.interval)); !r.OK {
			return &candleerr.EndError{Symbol: symbol, Msg: r.Msg}
		}
	}
	return nil
}

// LoadByFile reads the flat file of key (or opts.Path). Only the interval
// check applies: a flat file has no enclosing day.
func (s *Store) LoadByFile(ctx context.Context, key Key, opts LoadOptions) (model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolve(key.Partition)
	if err != nil {
		return nil, err
	}
	path := opts.Path
	if path == "" {
		path = s.filePath(p, key.Symbol)
	}
	raw, err := s.codec.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	c, err := candle.ToCandle(raw)
	if err != nil {
		return nil, err
	}
	if !opts.SkipInterval {
		r, err := valid.Interval(c, p.interval, "")
		if err != nil {
			return nil, err
		}
		if !r.OK {
			return nil, &candleerr.IntervalError{Symbol: key.Symbol, Msg: r.Msg}
		}
	}
	return project("LoadByFile", c, opts.Columns)
}

// project applies a column selection after checking it against the row width.
func project(fn string, c model.Candle, cols []int) (model.Candle, error) {
	w := c.Width()
	for _, k := range cols {
		if k < 0 || (len(c) > 0 && k >= w) {
			return nil, &candleerr.ParamError{Func: fn, Msg: fmt.Sprintf("column %d out of range, candle width=%d", k, w)}
		}
	}
	return c.Columns(cols), nil
}

// LoadMapByDate loads [start, end] for many symbols. With no symbols given,
// it uses those having a shard on every day of the range that pass the
// filter. Symbols that load no rows are left out.
func (s *Store) LoadMapByDate(ctx context.Context, part Partition, symbols []string, start, end any, opts MapOptions) (model.CandleMap, error) {
	if len(symbols) == 0 {
		p, err := s.resolve(part)
		if err != nil {
			return nil, err
		}
		days, err := dates.RangeDates(start, end, p.loc)
		if err != nil {
			return nil, err
		}
		symbols, err = s.symbolsOnEveryDay(p, days, opts.SymbolFilter)
		if err != nil {
			return nil, err
		}
	}
	return s.loadMap(ctx, symbols, opts, func(ctx context.Context, symbol string) (model.Candle, error) {
		return s.LoadByDate(ctx, part.Key(symbol), start, end, opts.LoadOptions)
	})
}

// LoadMapByFile loads the flat file of many symbols. With no symbols given,
// every file in the flat directory (or opts.Path) is loaded.
func (s *Store) LoadMapByFile(ctx context.Context, part Partition, symbols []string, opts MapOptions) (model.CandleMap, error) {
	dir := opts.Path
	if dir == "" {
		p, err := s.resolve(part)
		if err != nil {
			return nil, err
		}
		dir = s.fileDir(p)
	}
	if len(symbols) == 0 {
		all, err := s.symbolsIn(dir)
		if err != nil {
			return nil, err
		}
		for _, sym := range all {
			if opts.Match(sym) {
				symbols = append(symbols, sym)
			}
		}
	}
	return s.loadMap(ctx, symbols, opts, func(ctx context.Context, symbol string) (model.Candle, error) {
		lo := opts.LoadOptions
		if opts.Path != "" {
			lo.Path = filepath.Join(dir, symbol+"."+s.codec.Extension())
		}
		return s.LoadByFile(ctx, part.Key(symbol), lo)
	})
}

// LoadAll loads every day of key between its first and last shard.
func (s *Store) LoadAll(ctx context.Context, key Key, opts LoadOptions) (model.Candle, error) {
	res, err := s.GetCandleDates(key)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, &candleerr.DatesMissingError{Msg: fmt.Sprintf("symbol=%s %s", key.Symbol, res.Msg)}
	}
	return s.LoadByDate(ctx, key, res.Start, res.End, opts)
}

// LoadMapAll runs LoadAll for many symbols, defaulting to every symbol of
// the partition that passes the filter.
func (s *Store) LoadMapAll(ctx context.Context, part Partition, symbols []string, opts MapOptions) (model.CandleMap, error) {
	if len(symbols) == 0 {
		all, err := s.GetSymbolsAll(part)
		if err != nil {
			return nil, err
		}
		for _, sym := range all {
			if opts.Match(sym) {
				symbols = append(symbols, sym)
			}
		}
	}
	return s.loadMap(ctx, symbols, opts, func(ctx context.Context, symbol string) (model.Candle, error) {
		return s.LoadAll(ctx, part.Key(symbol), opts.LoadOptions)
	})
}

func (s *Store) loadMap(ctx context.Context, symbols []string, opts MapOptions, fn pool.Func[model.Candle]) (model.CandleMap, error) {
	values, summary, err := pool.Run(ctx, symbols, fn, s.poolOptions(opts))
	if err != nil {
		return nil, err
	}
	out := make(model.CandleMap, len(values))
	for sym, c := range values {
		if len(c) == 0 {
			continue
		}
		out[sym] = c
	}
	s.logger.Info("loaded map", "symbols", len(symbols), "loaded", len(out), "failed", len(summary.Failed))
	return out, nil
}
