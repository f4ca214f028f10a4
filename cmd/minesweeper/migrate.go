package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the PostgreSQL score table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Kind != config.StoragePostgres {
			return errors.New("migrate needs postgres storage, set DATABASE_URL")
		}
		if err := store.Migrate(cfg.Storage.DatabaseURL); err != nil {
			return err
		}
		log.Info("database is up to date")
		return nil
	},
}
