// Package vectorstore provides the factory for vector store adapters.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// connectTimeout bounds the reachability check of a network store.
const connectTimeout = 5 * time.Second

// Open creates the vector store selected by settings.Backend.
// An empty backend selects SQLite. The metric is used by stores that fix it
// when a collection is created.
func Open(ctx context.Context, settings domain.StoreSettings, metric domain.Metric) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
		}
		return store, nil

	case domain.StoreBackendMemory:
		return memory.NewStore(), nil

	case domain.StoreBackendQdrant:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return qdrant.New(ctx, qdrant.Config{
			Host:   settings.Host,
			Port:   settings.Port,
			APIKey: settings.APIKey,
			UseTLS: settings.UseTLS,
			Metric: metric,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported store backend: %s", domain.ErrInvalidInput, settings.Backend)
	}
}
