package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService owns one collection in a vector store.
type CollectionService struct {
	store    driven.VectorStore
	embedder *Embedder
	schema   domain.CollectionSchema
	params   domain.IndexParams
}

// NewCollectionService creates a collection service. The schema dimension is
// taken from the embedder so inserts and queries always agree.
func NewCollectionService(
	store driven.VectorStore,
	embedder *Embedder,
	name string,
	params domain.IndexParams,
) *CollectionService {
	if name == "" {
		name = domain.DefaultCollectionName
	}
	return &CollectionService{
		store:    store,
		embedder: embedder,
		schema:   domain.NewCollectionSchema(name, embedder.Dimensions()),
		params:   params,
	}
}

// Schema returns the managed schema.
func (s *CollectionService) Schema() domain.CollectionSchema {
	return s.schema
}

// EnsureCollection creates the collection or reuses a compatible one.
func (s *CollectionService) EnsureCollection(ctx context.Context) (domain.Collection, error) {
	coll, err := s.store.EnsureCollection(ctx, s.schema)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("ensure collection %q: %w", s.schema.Name, err)
	}
	if coll.Created {
		logger.Info("Created collection %q (dim=%d)", s.schema.Name, s.schema.Dimension)
	} else {
		logger.Debug("Reusing collection %q", s.schema.Name)
	}
	return coll, nil
}

// BuildIndex indexes every vector field with the configured parameters.
func (s *CollectionService) BuildIndex(ctx context.Context) error {
	defer logger.Timed("build index " + s.schema.Name)()

	if err := s.params.Validate(); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := s.store.BuildIndex(ctx, s.schema.Name, s.params); err != nil {
		return fmt.Errorf("build index on %q: %w", s.schema.Name, err)
	}
	return nil
}

// Load makes the collection queryable.
func (s *CollectionService) Load(ctx context.Context) error {
	if err := s.store.Load(ctx, s.schema.Name); err != nil {
		return fmt.Errorf("load %q: %w", s.schema.Name, err)
	}
	return nil
}

// Insert embeds every section, inserts one row per section and flushes.
// Rows are fully built and validated before the store is touched, so an
// embedding failure or dimension mismatch leaves the collection unchanged.
func (s *CollectionService) Insert(ctx context.Context, sections []domain.Section) ([]int64, error) {
	if len(sections) == 0 {
		return []int64{}, nil
	}
	defer logger.Timed(fmt.Sprintf("insert %d sections", len(sections)))()

	rows := make([]domain.Row, 0, len(sections))
	for i, section := range sections {
		vectors, err := s.embedder.EmbedSection(ctx, section)
		if err != nil {
			return nil, fmt.Errorf("section %d (%q): %w", i, section.SectionTitle, err)
		}
		row := domain.Row{Vectors: vectors, Text: section.Content}
		if err := row.Validate(s.schema); err != nil {
			return nil, fmt.Errorf("section %d (%q): %w", i, section.SectionTitle, err)
		}
		rows = append(rows, row)
	}

	ids, err := s.store.Insert(ctx, s.schema.Name, rows)
	if err != nil {
		return nil, fmt.Errorf("insert into %q: %w", s.schema.Name, err)
	}
	if err := s.store.Flush(ctx, s.schema.Name); err != nil {
		return nil, fmt.Errorf("flush %q: %w", s.schema.Name, err)
	}

	logger.Debug("Inserted %d rows into %q", len(ids), s.schema.Name)
	return ids, nil
}

// Search runs a nearest-neighbour search on one vector field.
func (s *CollectionService) Search(
	ctx context.Context, vector []float32, field domain.VectorField, limit int,
) ([]domain.Hit, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("search %q: %w: %q", s.schema.Name, domain.ErrUnknownField, field)
	}
	if limit <= 0 {
		return []domain.Hit{}, nil
	}
	if len(vector) != s.schema.Dimension {
		return nil, fmt.Errorf("search %q: %w: query has %d values, want %d",
			s.schema.Name, domain.ErrDimensionMismatch, len(vector), s.schema.Dimension)
	}

	hits, err := s.store.Search(ctx, s.schema.Name, vector, field, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", s.schema.Name, err)
	}
	return hits, nil
}
