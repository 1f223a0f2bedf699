package app

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"candlelite/internal/store"
)

// CheckEntry is the shard check of one symbol.
type CheckEntry struct {
	Symbol  string              `json:"symbol"`
	Range   string              `json:"date_range"`
	Missing []store.MissingDate `json:"missing"`
}

// WriteCheckReport writes complete symbols to .lastcheck.complete.json and
// symbols with gaps to .lastcheck.missing.json under dir.
func WriteCheckReport(dir string, complete []string, missing []CheckEntry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if len(complete) > 0 {
		p := filepath.Join(dir, ".lastcheck.complete.json")
		data, err := json.MarshalIndent(complete, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote complete", "path", p, "symbols", len(complete))
	}
	if len(missing) > 0 {
		p := filepath.Join(dir, ".lastcheck.missing.json")
		data, err := json.MarshalIndent(missing, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote missing", "path", p, "symbols", len(missing))
	}
	return nil
}
