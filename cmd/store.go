package main

import (
	"context"
	"fmt"
	"log/slog"

	"ad-campaigns/internal/adapter/postgres"
	redisstore "ad-campaigns/internal/adapter/redis"
	"ad-campaigns/internal/adapter/sqlite"
	"ad-campaigns/internal/config"
	"ad-campaigns/internal/config/configs"
	"ad-campaigns/internal/core/port"
	"ad-campaigns/internal/db"
)

// openStore connects the campaign store selected by cfg.Store. The SQLite
// schema is always brought up to date; Postgres is migrated only when
// migrate is true. The returned func releases the connection.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, migrate bool) (port.CampaignRepository, func(), error) {
	driver, err := cfg.Store.Normalized()
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(slog.String("store", driver))

	switch driver {
	case configs.StoreDriverPostgres:
		if migrate {
			if err = db.MigratePostgres(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewCampaignRepository(pool), pool.Close, nil

	case configs.StoreDriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		if err = db.MigrateSQLite(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Debug("sqlite schema ready", slog.String("path", cfg.SQLite.Path))
		return sqlite.NewCampaignRepository(sqlDB), func() { _ = sqlDB.Close() }, nil

	case configs.StoreDriverRedis:
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewCampaignRepository(client, cfg.Redis.MaxRetries), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", driver)
}
