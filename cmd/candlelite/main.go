// Command candlelite inspects and reshapes the local candle store.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync"

	"github.com/google/subcommands"

	"candlelite/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	register(subcommands.DefaultCommander)
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background(), &lazyApp{build: InitializeApp})))
}

func register(cdr *subcommands.Commander) {
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(&datesCmd{}, "store")
	cdr.Register(&checkCmd{}, "store")
	cdr.Register(&resampleCmd{}, "store")
	cdr.Register(&showSettingsCmd{}, "settings")
	cdr.Register(&settingsPathCmd{}, "settings")
}

// lazyApp builds the App on first use, so help and flags never read config.
type lazyApp struct {
	once  sync.Once
	build func() (*App, error)
	app   *App
	err   error
}

func (l *lazyApp) get() (*App, error) {
	l.once.Do(func() {
		l.app, l.err = l.build()
		if l.err == nil {
			slog.SetDefault(l.app.Logger)
		}
	})
	return l.app, l.err
}

func appFrom(args []interface{}) (*App, bool) {
	a, err := args[0].(*lazyApp).get()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return nil, false
	}
	return a, true
}
