package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"ad-campaigns/internal/config"
	"ad-campaigns/internal/db"
	"ad-campaigns/internal/logging"
)

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "insert demo campaigns into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, closer := logging.New(cfg.Log)
			defer closer.Close()

			repo, closeStore, err := openStore(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := db.Seed(cmd.Context(), repo, time.Now())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("demo campaigns seeded", slog.Int("created", n))
			return nil
		},
	}
}
