// Package redis provides a driven.EmbeddingCache shared through Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/vecenc"
)

// keyPrefix namespaces embedding keys.
const keyPrefix = "sercha:embedding:"

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// kv is the subset of *redis.Client used by the cache.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the server address (host:port).
	Addr string

	// Password authenticates against the server.
	Password string

	// DB selects the database.
	DB int

	// TTL bounds how long entries live. Zero keeps them forever.
	TTL time.Duration
}

// Cache stores vectors under model and the SHA-256 of the text.
type Cache struct {
	client kv
	ttl    time.Duration
}

// New connects to Redis and checks the server is reachable.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis at %s: %w", cfg.Addr, err)
	}
	return newCache(client, cfg.TTL), nil
}

func newCache(client kv, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached vector. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, Key(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	vec, err := vecenc.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores vec with the configured TTL.
func (c *Cache) Put(ctx context.Context, model, text string, vec []float32) error {
	if err := c.client.Set(ctx, Key(model, text), vecenc.Encode(vec), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Key returns the Redis key for text embedded by model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + model + ":" + hex.EncodeToString(sum[:])
}
