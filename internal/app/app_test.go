package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candlelite/internal/store"
)

func TestLoadProfilesCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "profiles.yaml")
	m, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", m["okx"].Timezone)
	assert.Equal(t, "America/New_York", m["binance"].Timezone)
	assert.FileExists(t, path)

	again, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestLoadProfilesFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: Bybit\n    date_dirname: BYBIT\n    timezone: UTC\n"), 0644))
	m, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "Bybit", DateDirname: "BYBIT", FileDirname: "BYBIT_FILE", Timezone: "UTC", Bar: "1m"}, m["bybit"])

	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: x\n"), 0644))
	_, err = LoadProfiles(path)
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CANDLE_BASE_DIR", dir)
	t.Setenv("CANDLE_EXCHANGE", "BINANCE")
	t.Setenv("CANDLE_PROFILES_FILE", filepath.Join(dir, "profiles.yaml"))
	t.Setenv("CANDLE_FORMAT", "parquet")
	t.Setenv("CANDLE_WORKERS", "4")
	t.Setenv("CANDLE_SKIP_ON_ERROR", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.SkipOnError)

	p, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "BINANCE"), cfg.DateBaseDir(p))
	assert.Equal(t, filepath.Join(dir, "BINANCE_FILE"), cfg.FileBaseDir(p))

	codec, err := ProvideCodec(cfg)
	require.NoError(t, err)
	assert.Equal(t, "parquet", codec.Extension())

	s, err := ProvideStore(cfg, codec, ProvideLogger(cfg))
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", s.Config().Timezone)
}

func TestProvideCodecRejectsUnknown(t *testing.T) {
	_, err := ProvideCodec(&Config{Format: "xml"})
	assert.Error(t, err)
}

func TestWriteCheckReport(t *testing.T) {
	dir := t.TempDir()
	missing := []CheckEntry{{Symbol: "ETH", Range: "2024-01-01..2024-01-02", Missing: []store.MissingDate{{Date: "2024-01-02", Path: "p"}}}}
	require.NoError(t, WriteCheckReport(dir, []string{"BTC"}, missing))

	data, err := os.ReadFile(filepath.Join(dir, ".lastcheck.missing.json"))
	require.NoError(t, err)
	var got []CheckEntry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, missing, got)
	assert.FileExists(t, filepath.Join(dir, ".lastcheck.complete.json"))
}
