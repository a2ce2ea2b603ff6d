// Package app provides the top-level application lifecycle for the faith
// market-data service. It wires the registry, the stats mirror, the
// aggregation engine, and the HTTP API, and runs them until shutdown.
package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Creat0r69/faith/internal/config"
	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/market"
	"github.com/Creat0r69/faith/internal/platform/coingecko"
	"github.com/Creat0r69/faith/internal/server"
	"github.com/Creat0r69/faith/internal/server/handler"
	"github.com/Creat0r69/faith/internal/service"
)

// App is the root application object. It owns the configuration, logger,
// and a list of cleanup functions that are called in reverse order on
// shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the aggregation engine and the HTTP
// API, and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, cleanup)

	rates := market.NewRateUpdater(
		coingecko.NewClient(a.cfg.Rates.URL),
		time.Duration(a.cfg.Rates.RefreshSeconds)*time.Second,
		a.logger,
	)

	// The engine's creation callback is bound to the service below; the
	// engine does not start delivering events until Start.
	var svc *service.MarketService
	eng := market.NewEngine(market.Config{
		FeedURL:        a.cfg.Feed.URL,
		TrackNewTokens: a.cfg.Engine.TrackNewTokens,
		OnNewToken: func(ev domain.NewTokenEvent) {
			svc.HandleNewToken(ctx, ev)
		},
	}, rates, deps.StatsCache, a.logger)

	svc = service.NewMarketService(
		eng,
		deps.TokenStore,
		deps.StatsCache,
		a.cfg.Engine.Tokens,
		time.Duration(a.cfg.Engine.RegistryRefreshSeconds)*time.Second,
		a.logger,
	)

	mints, err := svc.TrackedMints(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "registry unavailable at startup, using static token set",
			slog.String("error", err.Error()),
		)
		mints = a.cfg.Engine.Tokens
	}

	a.logger.InfoContext(ctx, "starting aggregation",
		slog.Int("tokens", len(mints)),
		slog.Bool("track_new_tokens", a.cfg.Engine.TrackNewTokens),
	)

	eng.Start(ctx, mints)
	defer eng.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(ctx)
	})

	if a.cfg.Server.Port > 0 {
		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		}, server.Handlers{
			Health: handler.NewHealthHandler(svc),
			Tokens: handler.NewTokenHandler(svc),
		}, a.logger)

		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
