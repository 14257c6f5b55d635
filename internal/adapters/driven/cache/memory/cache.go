// Package memory provides an in-process driven.EmbeddingCache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

type entry struct {
	vec     []float32
	expires time.Time
}

type key struct {
	model string
	text  string
}

// Cache keeps vectors in a map. Entries expire after the TTL, if one is set.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an empty cache. A zero ttl keeps entries forever.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[key]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached vector.
func (c *Cache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key{model, text}]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key{model, text})
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]float32, len(e.vec))
	copy(out, e.vec)
	return out, true, nil
}

// Put stores a copy of vec.
func (c *Cache) Put(_ context.Context, model, text string, vec []float32) error {
	stored := make([]float32, len(vec))
	copy(stored, vec)

	e := entry{vec: stored}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key{model, text}] = e
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.entries = make(map[key]entry)
	c.mu.Unlock()
	return nil
}
