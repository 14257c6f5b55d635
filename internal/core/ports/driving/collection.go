package driving

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// CollectionService manages the embedding collection: schema, index,
// embedded inserts and raw vector search.
type CollectionService interface {
	// EnsureCollection creates the collection or reuses an existing one.
	EnsureCollection(ctx context.Context) (domain.Collection, error)

	// BuildIndex indexes all three vector fields.
	BuildIndex(ctx context.Context) error

	// Insert embeds each section, stores one row per section and flushes.
	Insert(ctx context.Context, sections []domain.Section) ([]int64, error)

	// Load makes the collection queryable. Required after a restart.
	Load(ctx context.Context) error

	// Search runs a nearest-neighbour search on field.
	Search(ctx context.Context, vector []float32, field domain.VectorField, limit int) ([]domain.Hit, error)

	// Schema returns the schema the service manages.
	Schema() domain.CollectionSchema
}
