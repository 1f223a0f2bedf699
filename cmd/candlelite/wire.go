//go:build wireinject
// +build wireinject

package main

import (
	"candlelite/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds App (Config + Logger + Store) via Wire.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideCodec,
		app.ProvideStore,
		wire.Struct(new(App), "Config", "Logger", "Store"),
	)
	return nil, nil
}
