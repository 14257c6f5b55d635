package driven

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// VectorStore holds named collections of rows with three vector fields and a
// text payload.
//
// Implementations map their native failures onto domain errors:
// ErrVectorStoreUnavailable when unreachable, ErrSchemaConflict,
// ErrDimensionMismatch, ErrUnknownField, ErrFieldNotIndexed,
// ErrCollectionNotFound and ErrCollectionNotLoaded.
type VectorStore interface {
	// EnsureCollection creates the collection, treating "already exists" as
	// success when the existing schema is compatible.
	EnsureCollection(ctx context.Context, schema domain.CollectionSchema) (domain.Collection, error)

	// BuildIndex builds an approximate nearest-neighbour index over every
	// vector field. Calling it again must not corrupt stored rows.
	BuildIndex(ctx context.Context, collection string, params domain.IndexParams) error

	// Insert appends rows and returns their assigned ids.
	// Either every row is stored or none is.
	Insert(ctx context.Context, collection string, rows []domain.Row) ([]int64, error)

	// Flush makes inserted rows visible to subsequent searches.
	Flush(ctx context.Context, collection string) error

	// Load brings the collection into a queryable state.
	// Required after a process restart before Search.
	Load(ctx context.Context, collection string) error

	// Search returns up to limit hits on one vector field, highest similarity first.
	Search(ctx context.Context, collection string, query []float32, field domain.VectorField, limit int) ([]domain.Hit, error)

	// Close releases resources.
	Close() error
}
