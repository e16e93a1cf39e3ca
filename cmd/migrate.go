package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ad-campaigns/internal/config"
	"ad-campaigns/internal/config/configs"
	"ad-campaigns/internal/db"
	"ad-campaigns/internal/logging"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply schema migrations to the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, closer := logging.New(cfg.Log)
			defer closer.Close()

			driver, err := cfg.Store.Normalized()
			if err != nil {
				return err
			}
			switch driver {
			case configs.StoreDriverPostgres:
				if err = db.MigratePostgres(cfg.Psql.Addr.String()); err != nil {
					return fmt.Errorf("migrate postgres: %w", err)
				}
			case configs.StoreDriverSQLite:
				sqlDB, err := db.OpenSQLite(cmd.Context(), cfg.SQLite)
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				if err = db.MigrateSQLite(sqlDB); err != nil {
					return fmt.Errorf("migrate sqlite: %w", err)
				}
			default:
				logger.Info("store has no schema, nothing to migrate", slog.String("store", driver))
				return nil
			}
			logger.Info("migrations applied successfully", slog.String("store", driver))
			return nil
		},
	}
}
