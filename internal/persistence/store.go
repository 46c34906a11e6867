package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/config"
	"github.com/washline/laundry-service/internal/repository"
	"github.com/washline/laundry-service/internal/repository/memory"
	"github.com/washline/laundry-service/migrations"
)

// OpenStore connects the resource store. Without a DSN it falls back to the
// in-memory store and returns a nil *Postgres. Migrations run when enabled.
func OpenStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (repository.Store, *Postgres, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; using in-memory store")
		return memory.NewStore(), nil, nil
	}

	pg, err := NewPostgres(ctx, cfg, logger)
	if err != nil {
		return repository.Store{}, nil, err
	}
	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			pg.Close()
			return repository.Store{}, nil, err
		}
	}
	return repository.NewPostgresStore(pg.PoolHandle()), pg, nil
}
