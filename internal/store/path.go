package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"candlelite/internal/dates"
)

var monthDirRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

func sanitizeTimezone(tz string) string {
	return strings.NewReplacer("/", "", `\`, "").Replace(tz)
}

func (p partition) dateDirname() string {
	return strings.Join([]string{p.InstType, sanitizeTimezone(p.Timezone), p.Bar}, "-")
}

func (p partition) fileDirname() string {
	return strings.Join([]string{p.InstType, sanitizeTimezone(p.Timezone), p.Bar, "FILE"}, "-")
}

func (s *Store) dateRoot(p partition) string {
	return filepath.Join(s.cfg.DateBaseDir, p.dateDirname())
}

func (s *Store) dayDir(p partition, day time.Time) string {
	day = day.In(p.loc)
	return filepath.Join(s.dateRoot(p), day.Format(dates.MonthLayout), day.Format(dates.DayLayout))
}

func (s *Store) datePath(p partition, symbol string, day time.Time) string {
	return filepath.Join(s.dayDir(p, day), symbol+"."+s.codec.Extension())
}

func (s *Store) fileDir(p partition) string {
	return filepath.Join(s.cfg.FileBaseDir, p.fileDirname())
}

func (s *Store) filePath(p partition, symbol string) string {
	return filepath.Join(s.fileDir(p), symbol+"."+s.codec.Extension())
}

// DatePath returns the shard path of key on the calendar day of date.
func (s *Store) DatePath(key Key, date any) (string, error) {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return "", err
	}
	day, err := dates.ToDay(date, p.loc)
	if err != nil {
		return "", err
	}
	return s.datePath(p, key.Symbol, day), nil
}

// FilePath returns the flat-file path of key.
func (s *Store) FilePath(key Key) (string, error) {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return "", err
	}
	return s.filePath(p, key.Symbol), nil
}

// MissingDate is one absent shard.
type MissingDate struct {
	Date string `json:"date"`
	Path string `json:"path"`
}

// CheckResult reports which shards of a range exist.
type CheckResult struct {
	OK      bool          `json:"ok"`
	Missing []MissingDate `json:"missing"`
	Msg     string        `json:"msg,omitempty"`
}

// MissingDates returns the dates of Missing, in the same order.
func (r CheckResult) MissingDates() []string {
	out := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		out[i] = m.Date
	}
	return out
}

// CheckCandleDatePath tests shard existence for every day in [start, end].
// Missing days are listed newest first. File contents are not inspected.
func (s *Store) CheckCandleDatePath(key Key, start, end any) (CheckResult, error) {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return CheckResult{}, err
	}
	days, err := dates.RangeDates(start, end, p.loc)
	if err != nil {
		return CheckResult{}, err
	}
	return s.checkDays(p, key.Symbol, days), nil
}

func (s *Store) checkDays(p partition, symbol string, days []time.Time) CheckResult {
	res := CheckResult{OK: true, Missing: []MissingDate{}}
	for i := len(days) - 1; i >= 0; i-- {
		path := s.datePath(p, symbol, days[i])
		if !isFile(path) {
			res.OK = false
			res.Missing = append(res.Missing, MissingDate{Date: dates.Format(days[i]), Path: path})
		}
	}
	if !res.OK {
		res.Msg = "missing " + strings.Join(res.MissingDates(), ", ")
	}
	return res
}

// CheckCandleFilePath reports whether the flat file of key exists and its path.
func (s *Store) CheckCandleFilePath(key Key) (bool, string, error) {
	path, err := s.FilePath(key)
	if err != nil {
		return false, "", err
	}
	return isFile(path), path, nil
}

// DatesResult is the date coverage of one symbol.
type DatesResult struct {
	OK    bool
	Start time.Time
	End   time.Time
	// Missing lists absent days strictly between Start and End, oldest first.
	Missing []time.Time
	Msg     string
}

// GetCandleDates scans the months present under the partition and reports
// the first and last day with a shard for key.Symbol plus the gaps between.
func (s *Store) GetCandleDates(key Key) (DatesResult, error) {
	p, err := s.resolve(key.Partition)
	if err != nil {
		return DatesResult{}, err
	}
	months, err := s.months(p)
	if err != nil {
		return DatesResult{}, err
	}
	if len(months) == 0 {
		return DatesResult{Msg: "no data"}, nil
	}

	first := months[0]
	last := months[len(months)-1]
	from := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, p.loc)
	to := time.Date(last.Year(), last.Month()+1, 0, 0, 0, 0, 0, p.loc)

	var present, absent []time.Time
	for d := from; !d.After(to); d = dates.Tomorrow(d) {
		if isFile(s.datePath(p, key.Symbol, d)) {
			present = append(present, d)
		} else {
			absent = append(absent, d)
		}
	}
	if len(present) == 0 {
		return DatesResult{Msg: "no data"}, nil
	}

	res := DatesResult{OK: true, Start: present[0], End: present[len(present)-1], Missing: []time.Time{}}
	for _, d := range absent {
		if d.After(res.Start) && d.Before(res.End) {
			res.Missing = append(res.Missing, d)
		}
	}
	return res, nil
}

// months lists the YYYY-MM directories of the partition, oldest first.
func (s *Store) months(p partition) ([]time.Time, error) {
	entries, err := os.ReadDir(s.dateRoot(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for _, e := range entries {
		if !e.IsDir() || !monthDirRe.MatchString(e.Name()) {
			continue
		}
		m, err := time.ParseInLocation(dates.MonthLayout, e.Name(), p.loc)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// symbolsIn lists the symbols stored in dir, i.e. file names carrying the
// codec extension. A missing dir yields no symbols.
func (s *Store) symbolsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ext := "." + s.codec.Extension()
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	return out, nil
}

// SymbolFilter keeps symbols ending with EndsWith and containing Contains.
// Empty fields match everything.
type SymbolFilter struct {
	EndsWith string
	Contains string
}

// Match reports whether symbol passes the filter.
func (f SymbolFilter) Match(symbol string) bool {
	return strings.HasSuffix(symbol, f.EndsWith) && strings.Contains(symbol, f.Contains)
}

// GetSymbolsAll returns every symbol with at least one shard in the
// partition, sorted.
func (s *Store) GetSymbolsAll(part Partition) ([]string, error) {
	p, err := s.resolve(part)
	if err != nil {
		return nil, err
	}
	months, err := s.months(p)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, m := range months {
		monthDir := filepath.Join(s.dateRoot(p), m.Format(dates.MonthLayout))
		days, err := os.ReadDir(monthDir)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if !d.IsDir() {
				continue
			}
			syms, err := s.symbolsIn(filepath.Join(monthDir, d.Name()))
			if err != nil {
				return nil, err
			}
			for _, sym := range syms {
				seen[sym] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

// symbolsOnEveryDay returns the symbols that have a shard on every day,
// filtered, sorted.
func (s *Store) symbolsOnEveryDay(p partition, days []time.Time, f SymbolFilter) ([]string, error) {
	var common map[string]struct{}
	for _, d := range days {
		syms, err := s.symbolsIn(s.dayDir(p, d))
		if err != nil {
			return nil, err
		}
		today := map[string]struct{}{}
		for _, sym := range syms {
			if !f.Match(sym) {
				continue
			}
			if common == nil {
				today[sym] = struct{}{}
			} else if _, ok := common[sym]; ok {
				today[sym] = struct{}{}
			}
		}
		common = today
		if len(common) == 0 {
			break
		}
	}
	out := make([]string, 0, len(common))
	for sym := range common {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}
