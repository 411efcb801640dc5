// Package storage opens the accumulated-volume store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"service-discounts/internal/config"
	"service-discounts/internal/infrastructure/memory"
	"service-discounts/internal/infrastructure/postgres"
	"service-discounts/internal/interfaces"
)

// OpenVolumeStore returns the configured store and a function releasing it.
func OpenVolumeStore(ctx context.Context, cfg config.StorageConfig) (interfaces.VolumeStore, func(), error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return memory.NewVolumeStore(), func() {}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewVolumeStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
