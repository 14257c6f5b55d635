package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters map driver-specific failures onto these so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Dependency Errors.

	// ErrEmbeddingUnavailable indicates the embedding model cannot be reached or loaded.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store cannot be reached.
	// The core never retries; retry policy belongs to the caller.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// Collection Errors.

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// collection's declared dimension. Nothing from the batch is stored.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrSchemaConflict indicates a collection exists under the expected name
	// with an incompatible schema.
	ErrSchemaConflict = errors.New("collection schema conflict")

	// ErrCollectionNotFound indicates the named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionNotLoaded indicates a search before the collection was loaded.
	ErrCollectionNotLoaded = errors.New("collection not loaded")

	// ErrUnknownField indicates a vector field name outside the collection schema.
	ErrUnknownField = errors.New("unknown vector field")

	// ErrFieldNotIndexed indicates a search on a vector field without an index.
	ErrFieldNotIndexed = errors.New("vector field not indexed")
)
