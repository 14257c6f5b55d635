// Package graph holds the in-process search state of a collection: one HNSW
// graph per vector field plus the text payload of every visible row.
// The memory and SQLite vector stores share it; SQLite rebuilds it on Load.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/hnsw"
)

// Collection is the searchable state of one collection.
// Rows are staged on insert and become visible on Flush.
type Collection struct {
	mu sync.RWMutex

	schema  domain.CollectionSchema
	params  *domain.IndexParams
	indexes map[domain.VectorField]*hnsw.Index

	rows    map[int64]domain.Row
	order   []int64
	pending []domain.Row
}

// New creates an empty, unindexed collection.
func New(schema domain.CollectionSchema) *Collection {
	return &Collection{
		schema: schema,
		rows:   make(map[int64]domain.Row),
	}
}

// Schema returns the collection schema.
func (c *Collection) Schema() domain.CollectionSchema {
	return c.schema
}

// Params returns the index parameters and whether an index is built.
func (c *Collection) Params() (domain.IndexParams, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.params == nil {
		return domain.IndexParams{}, false
	}
	return *c.params, true
}

// Len returns the number of visible rows.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Pending returns the number of staged rows.
func (c *Collection) Pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// BuildIndex builds one graph per vector field over the visible rows.
// Rebuilding with identical parameters is a no-op; different parameters
// replace the graphs. Rows are never modified.
func (c *Collection) BuildIndex(params domain.IndexParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params != nil && *c.params == params {
		return nil
	}

	indexes := make(map[domain.VectorField]*hnsw.Index, 3)
	for _, field := range domain.AllVectorFields() {
		idx, err := hnsw.New(hnsw.Config{
			Dimension:      c.schema.Dimension,
			Space:          space(params.Metric),
			M:              params.M,
			EfConstruction: params.EfConstruction,
			EfSearch:       params.EfSearch,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		for _, id := range c.order {
			if err := idx.Add(uint64(id), c.rows[id].Vectors[field]); err != nil {
				return fmt.Errorf("%s: row %d: %w", field, id, mapErr(err))
			}
		}
		indexes[field] = idx
	}

	for _, old := range c.indexes {
		_ = old.Close()
	}
	c.indexes = indexes
	p := params
	c.params = &p
	return nil
}

// Stage validates rows and holds them until Flush.
// Rows must carry their assigned ids. Either all rows are staged or none.
func (c *Collection) Stage(rows []domain.Row) error {
	for i, row := range rows {
		if err := row.Validate(c.schema); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, rows...)
	return nil
}

// Flush makes staged rows visible and adds them to the graphs.
// On error nothing changes and the rows stay staged.
func (c *Collection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.add(c.pending); err != nil {
		return err
	}
	c.pending = nil
	return nil
}

// Add makes rows visible immediately, bypassing staging.
// Used when rebuilding state from durable storage. Either all rows are
// added or none.
func (c *Collection) Add(rows []domain.Row) error {
	for i, row := range rows {
		if err := row.Validate(c.schema); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(rows)
}

// Check reports whether Add would accept rows, without changing anything.
func (c *Collection) Check(rows []domain.Row) error {
	for i, row := range rows {
		if err := row.Validate(c.schema); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.check(rows)
}

// check requires c.mu held.
func (c *Collection) check(rows []domain.Row) error {
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := c.rows[row.ID]; dup {
			return fmt.Errorf("row %d: %w", row.ID, domain.ErrAlreadyExists)
		}
		if _, dup := seen[row.ID]; dup {
			return fmt.Errorf("row %d: %w", row.ID, domain.ErrAlreadyExists)
		}
		seen[row.ID] = struct{}{}
		for field, idx := range c.indexes {
			if err := idx.Check(uint64(row.ID), row.Vectors[field]); err != nil {
				return fmt.Errorf("%s: row %d: %w", field, row.ID, mapErr(err))
			}
		}
	}
	return nil
}

// add requires c.mu held for writing. Rows are checked before any is added.
func (c *Collection) add(rows []domain.Row) error {
	if err := c.check(rows); err != nil {
		return err
	}
	for _, row := range rows {
		c.rows[row.ID] = row
		c.order = append(c.order, row.ID)
		for field, idx := range c.indexes {
			if err := idx.Add(uint64(row.ID), row.Vectors[field]); err != nil {
				return fmt.Errorf("%s: row %d: %w", field, row.ID, mapErr(err))
			}
		}
	}
	return nil
}

// Search returns up to limit hits on field, most similar first.
func (c *Collection) Search(query []float32, field domain.VectorField, limit int) ([]domain.Hit, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	if len(query) != c.schema.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, collection %q expects %d",
			domain.ErrDimensionMismatch, len(query), c.schema.Name, c.schema.Dimension)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.indexes[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %q", domain.ErrFieldNotIndexed, field, c.schema.Name)
	}
	if limit <= 0 {
		return []domain.Hit{}, nil
	}

	results, err := idx.Search(query, limit)
	if err != nil {
		return nil, mapErr(err)
	}

	hits := make([]domain.Hit, 0, len(results))
	for _, r := range results {
		id := int64(r.Key)
		hits = append(hits, domain.Hit{
			ID:         id,
			Text:       c.rows[id].Text,
			Similarity: float64(r.Similarity),
		})
	}
	return hits, nil
}

// Close releases the graphs.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range c.indexes {
		_ = idx.Close()
	}
	c.indexes = nil
	c.params = nil
	return nil
}

func space(m domain.Metric) hnsw.Space {
	if m == domain.MetricCosine {
		return hnsw.SpaceCosine
	}
	return hnsw.SpaceInnerProduct
}

func mapErr(err error) error {
	if errors.Is(err, hnsw.ErrDimension) {
		return fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, err)
	}
	if errors.Is(err, hnsw.ErrDuplicateKey) {
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	}
	return err
}
