// Package cache provides the factory for embedding cache adapters.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// connectTimeout bounds the Redis reachability check.
const connectTimeout = 5 * time.Second

// Open creates the cache selected by settings.Backend.
// The none backend, and an empty one, return a nil cache.
func Open(ctx context.Context, settings domain.CacheSettings) (driven.EmbeddingCache, error) {
	switch settings.Backend {
	case domain.CacheBackendNone, "":
		return nil, nil

	case domain.CacheBackendMemory:
		return memory.NewCache(settings.TTL), nil

	case domain.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		c, err := redis.New(ctx, redis.Config{
			Addr:     settings.Addr,
			Password: settings.Password,
			DB:       settings.DB,
			TTL:      settings.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("opening embedding cache: %w", err)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
