package main

import (
	"log/slog"

	"candlelite/internal/app"
	"candlelite/internal/store"
)

// App holds application dependencies built by Wire.
type App struct {
	Config *app.Config
	Logger *slog.Logger
	Store  *store.Store
}
