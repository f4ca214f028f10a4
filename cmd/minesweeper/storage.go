package main

import (
	"context"
	"fmt"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/scores"
	"github.com/vancomm/minesweeper-engine/internal/store"
)

// openStorage returns the configured score storage and a func releasing it.
func openStorage(ctx context.Context, c config.StorageConfig) (scores.Storage, func(), error) {
	switch c.Kind {
	case config.StorageFile:
		f, err := store.NewFile(c.Dir)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	case config.StoragePostgres:
		if c.Table == store.DefaultTable {
			if err := store.Migrate(c.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		pg, err := store.NewPostgres(ctx, c.DatabaseURL, c.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("unable to ping database: %w", err)
		}
		return pg, pg.Close, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
