// Package store persists candles in a date-partitioned file hierarchy:
//
//	{date base}/{instType}-{timezone}-{bar}/{YYYY-MM}/{YYYY-MM-DD}/{symbol}.{ext}
//	{file base}/{instType}-{timezone}-{bar}-FILE/{symbol}.{ext}
//
// Single-symbol operations touch only their own paths. Multi-symbol loads
// fan out over a bounded worker pool. Nothing here locks shards against
// concurrent writers, and saves are not atomic across files.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"candlelite/internal/bar"
	"candlelite/internal/dates"
	"candlelite/internal/saver"
)

// Config is the per-exchange configuration a Store is built from.
type Config struct {
	// DateBaseDir roots the day-sharded layout.
	DateBaseDir string
	// FileBaseDir roots the flat per-symbol layout. Empty means DateBaseDir.
	FileBaseDir string
	// Timezone and Bar are used when a Partition leaves them empty.
	Timezone string
	Bar      string
	// Codec selects the shard format. Nil means CSV.
	Codec saver.Codec
	// Workers bounds multi-symbol loads; below 1 means sequential.
	Workers int
	// SkipOnError drops failing symbols from multi-symbol loads instead
	// of failing the whole call.
	SkipOnError bool
	Logger      *slog.Logger
}

// Partition selects one storage area: instrument type, timezone and bar.
type Partition struct {
	InstType string
	Timezone string
	Bar      string
}

// Key returns the key of symbol inside the partition.
func (p Partition) Key(symbol string) Key {
	return Key{Partition: p, Symbol: symbol}
}

// Key identifies one symbol's data inside a partition.
type Key struct {
	Partition
	Symbol string
}

// Store reads and writes candle files for one configuration.
type Store struct {
	cfg    Config
	codec  saver.Codec
	logger *slog.Logger
}

// New validates cfg and returns a Store.
func New(cfg Config) (*Store, error) {
	if cfg.DateBaseDir == "" {
		return nil, errors.New("store: empty date base dir")
	}
	if cfg.FileBaseDir == "" {
		cfg.FileBaseDir = cfg.DateBaseDir
	}
	if cfg.Bar == "" {
		cfg.Bar = "1m"
	}
	if _, err := bar.ParseInterval(cfg.Bar, bar.MinuteMs); err != nil {
		return nil, fmt.Errorf("store: default bar: %w", err)
	}
	if _, err := dates.Location(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	codec := cfg.Codec
	if codec == nil {
		codec = saver.CSVCodec{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cfg: cfg, codec: codec, logger: logger}, nil
}

// Config returns the configuration the store was built with.
func (s *Store) Config() Config { return s.cfg }

// partition is a Partition with defaults applied and derived values cached.
type partition struct {
	Partition
	loc      *time.Location
	interval int64
}

func (s *Store) resolve(p Partition) (partition, error) {
	if p.Timezone == "" {
		p.Timezone = s.cfg.Timezone
	}
	if p.Bar == "" {
		p.Bar = s.cfg.Bar
	}
	loc, err := dates.Location(p.Timezone)
	if err != nil {
		return partition{}, err
	}
	iv, err := bar.ParseInterval(p.Bar, bar.MinuteMs)
	if err != nil {
		return partition{}, err
	}
	return partition{Partition: p, loc: loc, interval: iv}, nil
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
