package saver

import (
	"strings"

	"candlelite/internal/model"
)

// Codec reads and writes one candle file. The store picks the file
// extension from the codec, so shards written by one codec are invisible
// to another.
type Codec interface {
	Save(c model.Candle, path string) error
	Load(path string) (model.Candle, error)
	Extension() string
}

// NewCodec creates implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewCodec(format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVCodec{}
	case "parquet":
		return ParquetCodec{}
	case "json":
		return JSONCodec{}
	default:
		return nil
	}
}
