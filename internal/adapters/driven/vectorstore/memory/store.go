// Package memory provides an in-process driven.VectorStore. Collections live
// for the lifetime of the Store; it is used in tests and for throwaway
// pipelines that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/graph"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type collection struct {
	*graph.Collection
	loaded bool
}

// Store keeps collections in memory. Ids are assigned per collection starting at 1.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	nextID      map[string]int64
	closed      bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
		nextID:      make(map[string]int64),
	}
}

// EnsureCollection creates the collection or returns the compatible existing one.
func (s *Store) EnsureCollection(_ context.Context, schema domain.CollectionSchema) (domain.Collection, error) {
	if err := schema.Validate(); err != nil {
		return domain.Collection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Collection{}, domain.ErrVectorStoreUnavailable
	}

	if existing, ok := s.collections[schema.Name]; ok {
		if !existing.Schema().Compatible(schema) {
			return domain.Collection{}, fmt.Errorf("%w: %q has dimension %d, requested %d",
				domain.ErrSchemaConflict, schema.Name, existing.Schema().Dimension, schema.Dimension)
		}
		return domain.Collection{Schema: existing.Schema()}, nil
	}

	s.collections[schema.Name] = &collection{Collection: graph.New(schema)}
	s.nextID[schema.Name] = 1
	return domain.Collection{Schema: schema, Created: true}, nil
}

// BuildIndex builds the per-field graphs.
func (s *Store) BuildIndex(_ context.Context, name string, params domain.IndexParams) error {
	c, err := s.get(name)
	if err != nil {
		return err
	}
	return c.BuildIndex(params)
}

// Insert assigns ids and stages rows until Flush.
func (s *Store) Insert(_ context.Context, name string, rows []domain.Row) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getLocked(name)
	if err != nil {
		return nil, err
	}

	next := s.nextID[name]
	staged := make([]domain.Row, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		row.ID = next + int64(i)
		staged[i] = row
		ids[i] = row.ID
	}

	if err := c.Stage(staged); err != nil {
		return nil, err
	}
	s.nextID[name] = next + int64(len(rows))
	return ids, nil
}

// Flush makes staged rows searchable.
func (s *Store) Flush(_ context.Context, name string) error {
	c, err := s.get(name)
	if err != nil {
		return err
	}
	return c.Flush()
}

// Load marks the collection queryable.
func (s *Store) Load(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getLocked(name)
	if err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// Search queries one field of a loaded collection.
func (s *Store) Search(
	_ context.Context, name string, query []float32, field domain.VectorField, limit int,
) ([]domain.Hit, error) {
	s.mu.Lock()
	c, err := s.getLocked(name)
	loaded := err == nil && c.loaded
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !loaded {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotLoaded, name)
	}
	return c.Search(query, field, limit)
}

// Close drops every collection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		_ = c.Close()
	}
	s.collections = make(map[string]*collection)
	s.closed = true
	return nil
}

// Release unloads a collection, as a process restart would.
func (s *Store) Release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		c.loaded = false
	}
}

func (s *Store) get(name string) (*collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(name)
}

func (s *Store) getLocked(name string) (*collection, error) {
	if s.closed {
		return nil, domain.ErrVectorStoreUnavailable
	}
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}
