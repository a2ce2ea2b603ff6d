package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Creat0r69/faith/internal/cache/redis"
	"github.com/Creat0r69/faith/internal/config"
	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/store/postgres"
)

// Dependencies bundles the optional infrastructure the application wires at
// startup. Fields are nil when the corresponding backend is not configured;
// the engine and service degrade to in-memory operation.
type Dependencies struct {
	TokenStore domain.TokenStore
	StatsCache domain.StatsCache
}

// Wire constructs the configured infrastructure clients and returns them
// together with a cleanup function that should be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	if cfg.UsesPostgres() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.TokenStore = postgres.NewTokenStore(pgClient.Pool())
		logger.InfoContext(ctx, "token registry enabled")
	}

	if cfg.UsesRedis() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.StatsCache = redis.NewStatsCache(redisClient)
		logger.InfoContext(ctx, "stats mirror enabled", slog.String("addr", cfg.Redis.Addr))
	}

	return deps, cleanup, nil
}
