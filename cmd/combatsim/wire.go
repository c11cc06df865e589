//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/config"
)

var appSet = wire.NewSet(
	provideSource,
	provideScripts,
	providePool,
	provideBundle,
	provideScorers,
	provideBuses,
	provideTicks,
	provideDeps,
	provideWorld,
	wire.Struct(new(App), "*"),
)

func initializeApp(cfg config.Config, logger *zap.Logger, opts Options) (*App, func(), error) {
	wire.Build(appSet)
	return nil, nil, nil
}
