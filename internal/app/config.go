package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds application configuration from env
type Config struct {
	BaseDir      string // root of every exchange's data
	Exchange     string // selected profile name
	ProfilesFile string
	Format       string // csv | json | parquet
	Workers      int
	SkipOnError  bool
	LogLevel     string // debug | info | warn | error
	Profiles     map[string]Profile
}

// LoadConfig reads config from environment and the profiles file. A missing
// profiles file is created with the built-in defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseDir:      getEnv("CANDLE_BASE_DIR", "CANDLELITE_DATA"),
		Exchange:     strings.ToLower(getEnv("CANDLE_EXCHANGE", "okx")),
		ProfilesFile: getEnv("CANDLE_PROFILES_FILE", defaultProfilesPath()),
		Format:       getEnv("CANDLE_FORMAT", "csv"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Workers:      1,
	}
	if w := os.Getenv("CANDLE_WORKERS"); w != "" {
		if v, err := strconv.Atoi(w); err == nil && v > 0 {
			cfg.Workers = v
		}
	}
	if v := os.Getenv("CANDLE_SKIP_ON_ERROR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CANDLE_SKIP_ON_ERROR: %w", err)
		}
		cfg.SkipOnError = b
	}

	profiles, err := LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultProfilesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "candlelite.yaml"
	}
	return filepath.Join(dir, "candlelite", "profiles.yaml")
}

// Profile returns the selected exchange profile.
func (c *Config) Profile() (Profile, error) {
	p, ok := c.Profiles[c.Exchange]
	if !ok {
		return Profile{}, fmt.Errorf("unknown exchange profile %q", c.Exchange)
	}
	return p, nil
}

// DateBaseDir returns the day-sharded root of p, e.g. CANDLELITE_DATA/OKX.
func (c *Config) DateBaseDir(p Profile) string {
	return filepath.Join(c.BaseDir, p.DateDirname)
}

// FileBaseDir returns the flat-file root of p, e.g. CANDLELITE_DATA/OKX_FILE.
func (c *Config) FileBaseDir(p Profile) string {
	return filepath.Join(c.BaseDir, p.FileDirname)
}
