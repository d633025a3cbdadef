package fx

import (
	"github.com/franbe7/XLBALL/internal/api"
	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/logger"
	"github.com/franbe7/XLBALL/internal/repository"
	"github.com/franbe7/XLBALL/internal/server"
	"github.com/franbe7/XLBALL/internal/service"

	"go.uber.org/fx"
)

func ProvideHost(c *api.HostClient) service.Host {
	return c
}

func ProvideStatsStore(r *repository.StatsRepository) service.StatsStore {
	return r
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(logger.New),
	// storage
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(ProvideStatsStore),
	// host bridge
	fx.Provide(api.NewHostClient),
	fx.Provide(ProvideHost),
	// svc
	fx.Provide(service.NewMatchAttributor),
	fx.Provide(service.NewStadiumLoader),
	fx.Provide(service.NewCommandService),
	fx.Provide(service.NewRoom),
	// server
	fx.Provide(server.NewEventServer),
)
