package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"candlelite/internal/candle"
	"candlelite/internal/candleerr"
	"candlelite/internal/dates"
	"candlelite/internal/model"
	"candlelite/internal/valid"
)

// SaveOptions tunes saves.
type SaveOptions struct {
	Checks
	// KeepExisting leaves files that already exist untouched.
	KeepExisting bool
	// Path overrides the flat-file path (SaveByFile only).
	Path string
}

// SaveByDate writes one shard per day in [start, end], validating each
// day's slice before writing it. Days are processed in order and written
// as they pass: when a day fails, the shards of earlier days stay on disk
// and later days are not attempted.
func (s *Store) SaveByDate(ctx context.Context, c model.Candle, key Key, start, end any, opts SaveOptions) error {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return err
	}
	days, err := dates.RangeDates(start, end, p.loc)
	if err != nil {
		return err
	}
	c, err = candle.ToCandle(c)
	if err != nil {
		return err
	}

	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.datePath(p, key.Symbol, d)
		if opts.KeepExisting && isFile(path) {
			s.logger.Debug("shard exists, skip", "symbol", key.Symbol, "date", dates.Format(d))
			continue
		}
		day := candle.Slice(c, valid.DayStart(d), valid.DayEnd(d, p.interval))
		if err := s.validate(day, key.Symbol, p, d, d, opts.Checks); err != nil {
			s.logger.Warn("shard invalid, stop", "symbol", key.Symbol, "date", dates.Format(d), "error", err)
			return err
		}
		if err := s.write(day, path); err != nil {
			return err
		}
		s.logger.Debug("shard saved", "symbol", key.Symbol, "date", dates.Format(d), "rows", len(day), "path", path)
	}
	return nil
}

// SaveByFile writes c to the flat file of key (or opts.Path).
func (s *Store) SaveByFile(ctx context.Context, c model.Candle, key Key, opts SaveOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolve(key.Partition)
	if err != nil {
		return err
	}
	path := opts.Path
	if path == "" {
		path = s.filePath(p, key.Symbol)
	}
	if opts.KeepExisting && isFile(path) {
		s.logger.Debug("file exists, skip", "symbol", key.Symbol, "path", path)
		return nil
	}
	if !opts.SkipInterval {
		r, err := valid.Interval(c, p.interval, "")
		if err != nil {
			return err
		}
		if !r.OK {
			return &candleerr.IntervalError{Symbol: key.Symbol, Msg: r.Msg}
		}
	}
	c, err = candle.ToCandle(c)
	if err != nil {
		return err
	}
	if err := s.write(c, path); err != nil {
		return err
	}
	s.logger.Debug("file saved", "symbol", key.Symbol, "rows", len(c), "path", path)
	return nil
}

// SaveMapByDate runs SaveByDate for each symbol (all map keys, sorted, when
// symbols is empty) and stops at the first failure.
func (s *Store) SaveMapByDate(ctx context.Context, m model.CandleMap, part Partition, symbols []string, start, end any, opts SaveOptions) error {
	if len(symbols) == 0 {
		symbols = m.Symbols()
	}
	for _, sym := range symbols {
		c, ok := m[sym]
		if !ok {
			return &candleerr.ParamError{Func: "SaveMapByDate", Msg: fmt.Sprintf("symbol %s not in candle map", sym)}
		}
		if err := s.SaveByDate(ctx, c, part.Key(sym), start, end, opts); err != nil {
			return err
		}
	}
	return nil
}

// SaveMapByFile runs SaveByFile for each symbol and stops at the first failure.
func (s *Store) SaveMapByFile(ctx context.Context, m model.CandleMap, part Partition, symbols []string, opts SaveOptions) error {
	if len(symbols) == 0 {
		symbols = m.Symbols()
	}
	opts.Path = ""
	for _, sym := range symbols {
		c, ok := m[sym]
		if !ok {
			return &candleerr.ParamError{Func: "SaveMapByFile", Msg: fmt.Sprintf("symbol %s not in candle map", sym)}
		}
		if err := s.SaveByFile(ctx, c, part.Key(sym), opts); err != nil {
			return err
		}
	}
	return nil
}

// write creates the parent directories and writes c. MkdirAll tolerates a
// directory created concurrently.
func (s *Store) write(c model.Candle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := s.codec.Save(c, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
