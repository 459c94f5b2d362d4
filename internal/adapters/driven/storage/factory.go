// Package storage provides the factory for requirement store adapters.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// OpenRequirementStore opens the store selected by settings.
func OpenRequirementStore(ctx context.Context, settings domain.StoreSettings) (driven.RequirementStore, error) {
	if settings.Backend.RequiresDSN() && settings.DSN == "" {
		return nil, fmt.Errorf("%w: %s store requires a connection string", domain.ErrInvalidInput, settings.Backend)
	}

	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		store, err := sqlite.NewStore(settings.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: open sqlite: %w", domain.ErrPersistence, err)
		}
		return store, nil

	case domain.StoreBackendPostgres:
		return postgres.Open(ctx, postgres.DefaultConfig(settings.DSN))

	case domain.StoreBackendRedis:
		return redis.Open(ctx, settings.DSN)

	case domain.StoreBackendMemory:
		return memory.NewRequirementStore(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported store backend: %s", domain.ErrInvalidInput, settings.Backend)
	}
}
