package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the per-exchange storage default set.
type Profile struct {
	Name        string `yaml:"name"`
	DateDirname string `yaml:"date_dirname"`
	FileDirname string `yaml:"file_dirname"`
	Timezone    string `yaml:"timezone"`
	Bar         string `yaml:"bar"`
	Note        string `yaml:"note,omitempty"`
}

type profilesFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultProfiles are written when no profiles file exists.
var DefaultProfiles = []Profile{
	{Name: "okx", DateDirname: "OKX", FileDirname: "OKX_FILE", Timezone: "Asia/Shanghai", Bar: "1m", Note: "OKX spot/swap candles"},
	{Name: "binance", DateDirname: "BINANCE", FileDirname: "BINANCE_FILE", Timezone: "America/New_York", Bar: "1m", Note: "Binance spot/futures candles"},
}

// LoadProfiles reads profiles from path, creating the file with
// DefaultProfiles when it does not exist.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := SaveProfiles(path, DefaultProfiles); err != nil {
			return nil, err
		}
		return index(DefaultProfiles)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: can't read profiles", err)
	}
	var pf profilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: can't unmarshal profiles", err)
	}
	return index(pf.Profiles)
}

func index(list []Profile) (map[string]Profile, error) {
	m := make(map[string]Profile, len(list))
	for _, p := range list {
		if p.Name == "" {
			return nil, errors.New("profile with empty name")
		}
		if p.DateDirname == "" {
			return nil, fmt.Errorf("profile %s: empty date_dirname", p.Name)
		}
		if p.FileDirname == "" {
			p.FileDirname = p.DateDirname + "_FILE"
		}
		if p.Bar == "" {
			p.Bar = "1m"
		}
		m[strings.ToLower(p.Name)] = p
	}
	return m, nil
}

// SaveProfiles writes profiles to path as YAML.
func SaveProfiles(path string, profiles []Profile) error {
	data, err := yaml.Marshal(profilesFile{Profiles: profiles})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
