package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"candlelite/internal/app"
	"candlelite/internal/dates"
	"candlelite/internal/resample"
	"candlelite/internal/store"
)

// partitionFlags are shared by every command that addresses a partition.
type partitionFlags struct {
	inst string
	tz   string
	bar  string
}

func (p *partitionFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.inst, "inst", "SPOT", "instrument type, e.g. SPOT or SWAP")
	f.StringVar(&p.tz, "tz", "", "timezone (default: exchange profile)")
	f.StringVar(&p.bar, "bar", "", "bar (default: exchange profile)")
}

func (p *partitionFlags) partition() store.Partition {
	return store.Partition{InstType: p.inst, Timezone: p.tz, Bar: p.bar}
}

func splitSymbols(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type datesCmd struct {
	partitionFlags
	symbol string
}

func (*datesCmd) Name() string     { return "dates" }
func (*datesCmd) Synopsis() string { return "show stored date range and gaps of a symbol" }
func (*datesCmd) Usage() string {
	return "dates -symbol BTC-USDT [-inst SPOT] [-tz Asia/Shanghai] [-bar 1m]\n"
}
func (c *datesCmd) SetFlags(f *flag.FlagSet) {
	c.partitionFlags.set(f)
	f.StringVar(&c.symbol, "symbol", "", "symbol")
}

func (c *datesCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, ok := appFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	res, err := a.Store.GetCandleDates(c.partition().Key(c.symbol))
	if err != nil {
		slog.Error("dates failed", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	if !res.OK {
		fmt.Printf("%s: %s\n", c.symbol, res.Msg)
		return subcommands.ExitSuccess
	}
	fmt.Printf("%s: %s .. %s missing=%d\n", c.symbol, dates.Format(res.Start), dates.Format(res.End), len(res.Missing))
	for _, d := range res.Missing {
		fmt.Println("  " + dates.Format(d))
	}
	return subcommands.ExitSuccess
}

type checkCmd struct {
	partitionFlags
	symbols string
	start   string
	end     string
	report  bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "list missing day shards in a date range" }
func (*checkCmd) Usage() string {
	return "check -symbols BTC-USDT,ETH-USDT -start 2024-01-01 -end 2024-01-31 [-report]\n"
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.partitionFlags.set(f)
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols (default: every symbol in the partition)")
	f.StringVar(&c.start, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "last day, YYYY-MM-DD")
	f.BoolVar(&c.report, "report", false, "write .lastcheck.*.json under the date base dir")
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.start == "" || c.end == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, ok := appFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	part := c.partition()
	symbols := splitSymbols(c.symbols)
	if len(symbols) == 0 {
		all, err := a.Store.GetSymbolsAll(part)
		if err != nil {
			slog.Error("list symbols failed", "error", err)
			return subcommands.ExitFailure
		}
		symbols = all
	}

	var complete []string
	var missing []app.CheckEntry
	for _, sym := range symbols {
		res, err := a.Store.CheckCandleDatePath(part.Key(sym), c.start, c.end)
		if err != nil {
			slog.Error("check failed", "symbol", sym, "error", err)
			return subcommands.ExitFailure
		}
		if res.OK {
			complete = append(complete, sym)
			continue
		}
		fmt.Printf("%-12s %s\n", sym, res.Msg)
		missing = append(missing, app.CheckEntry{Symbol: sym, Range: c.start + ".." + c.end, Missing: res.Missing})
	}
	slog.Info("check done", "symbols", len(symbols), "complete", len(complete), "missing", len(missing))

	if c.report {
		if err := app.WriteCheckReport(a.Store.Config().DateBaseDir, complete, missing); err != nil {
			slog.Error("write report failed", "error", err)
			return subcommands.ExitFailure
		}
	}
	if len(missing) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type resampleCmd struct {
	partitionFlags
	symbol string
	start  string
	end    string
	target string
}

func (*resampleCmd) Name() string     { return "resample" }
func (*resampleCmd) Synopsis() string { return "compress a stored range to a coarser bar and save it as one file" }
func (*resampleCmd) Usage() string {
	return "resample -symbol BTC-USDT -start 2024-01-01 -end 2024-01-31 -to 15m\n"
}
func (c *resampleCmd) SetFlags(f *flag.FlagSet) {
	c.partitionFlags.set(f)
	f.StringVar(&c.symbol, "symbol", "", "symbol")
	f.StringVar(&c.start, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "last day, YYYY-MM-DD")
	f.StringVar(&c.target, "to", "", "target bar, e.g. 15m or 1h")
}

func (c *resampleCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.start == "" || c.end == "" || c.target == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, ok := appFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	src := c.partition()
	if src.Bar == "" {
		src.Bar = a.Store.Config().Bar
	}
	candles, err := a.Store.LoadByDate(ctx, src.Key(c.symbol), c.start, c.end, store.LoadOptions{})
	if err != nil {
		slog.Error("load failed", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	out, err := resample.Compress(candles, c.target, src.Bar)
	if err != nil {
		slog.Error("compress failed", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	dst := src
	dst.Bar = c.target
	if err := a.Store.SaveByFile(ctx, out, dst.Key(c.symbol), store.SaveOptions{}); err != nil {
		slog.Error("save failed", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	path, _ := a.Store.FilePath(dst.Key(c.symbol))
	slog.Info("resampled", "symbol", c.symbol, "from", src.Bar, "to", c.target, "rows_in", len(candles), "rows_out", len(out), "path", path)
	return subcommands.ExitSuccess
}

type showSettingsCmd struct{}

func (*showSettingsCmd) Name() string           { return "show-settings" }
func (*showSettingsCmd) Synopsis() string       { return "list exchange profiles" }
func (*showSettingsCmd) Usage() string          { return "show-settings\n" }
func (*showSettingsCmd) SetFlags(*flag.FlagSet) {}

func (*showSettingsCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, ok := appFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	cfg := a.Config
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDATE DIR\tFILE DIR\tTIMEZONE\tBAR\tNOTE")
	for _, name := range sortedProfiles(cfg) {
		p := cfg.Profiles[name]
		mark := " "
		if name == cfg.Exchange {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n", mark, p.Name, cfg.DateBaseDir(p), cfg.FileBaseDir(p), p.Timezone, p.Bar, p.Note)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

func sortedProfiles(cfg *app.Config) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for n := range cfg.Profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

type settingsPathCmd struct{}

func (*settingsPathCmd) Name() string           { return "settings-path" }
func (*settingsPathCmd) Synopsis() string       { return "print the profiles file path" }
func (*settingsPathCmd) Usage() string          { return "settings-path\n" }
func (*settingsPathCmd) SetFlags(*flag.FlagSet) {}

func (*settingsPathCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, ok := appFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	fmt.Println(a.Config.ProfilesFile)
	return subcommands.ExitSuccess
}
