package app

import (
	"fmt"
	"log/slog"

	"candlelite/internal/saver"
	"candlelite/internal/slogx"
	"candlelite/internal/store"
)

// ProvideConfig loads config from environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvideLogger creates the process logger at the configured level (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	return slogx.NewDefault(cfg.LogLevel)
}

// ProvideCodec creates the shard codec from config (for Wire).
// Returns error if Format is not supported.
func ProvideCodec(cfg *Config) (saver.Codec, error) {
	c := saver.NewCodec(cfg.Format)
	if c == nil {
		return nil, fmt.Errorf("unsupported CANDLE_FORMAT %q (use: csv, parquet, json)", cfg.Format)
	}
	return c, nil
}

// ProvideStore builds the store of the selected exchange profile (for Wire).
func ProvideStore(cfg *Config, codec saver.Codec, logger *slog.Logger) (*store.Store, error) {
	p, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return store.New(store.Config{
		DateBaseDir: cfg.DateBaseDir(p),
		FileBaseDir: cfg.FileBaseDir(p),
		Timezone:    p.Timezone,
		Bar:         p.Bar,
		Codec:       codec,
		Workers:     cfg.Workers,
		SkipOnError: cfg.SkipOnError,
		Logger:      logger.With("exchange", p.Name),
	})
}
