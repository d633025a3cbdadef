package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/franbe7/XLBALL/internal/api"
	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/constants"
	fxmodules "github.com/franbe7/XLBALL/internal/fx"
	"github.com/franbe7/XLBALL/internal/repository"
	"github.com/franbe7/XLBALL/internal/server"
	"github.com/franbe7/XLBALL/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	room *service.Room,
	eventServer *server.EventServer,
	hostClient *api.HostClient,
	stats *repository.StatsRepository,
	logger zerolog.Logger,
) {
	cfg.LogSummary(logger)

	srv := eventServer.HTTPServer()

	var (
		cancel context.CancelFunc
		g      *errgroup.Group
	)

	stop := func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
		cancel()
		err := g.Wait()
		if closeErr := stats.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			g, runCtx = errgroup.WithContext(runCtx)

			g.Go(func() error {
				return room.Run(runCtx)
			})
			g.Go(func() error {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("server failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return err
				}
				return nil
			})

			if err := hostClient.OpenRoom(ctx, api.RoomSettingsFrom(cfg)); err != nil {
				_ = stop(ctx)
				return fmt.Errorf("failed to open room: %w", err)
			}
			logger.Info().Str("room", cfg.RoomName).Msg("room open requested")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, done := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer done()

			if err := stop(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("shutdown finished with errors")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
