package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Embedder maps text to a vector of the model's dimension.
// Empty text yields a zero vector without calling the model.
// It is constructed once and shared by reference.
type Embedder struct {
	model driven.EmbeddingService
	cache driven.EmbeddingCache
	dim   int
}

// NewEmbedder creates an embedder over model. cache is optional (can be nil).
func NewEmbedder(model driven.EmbeddingService, cache driven.EmbeddingCache) *Embedder {
	return &Embedder{
		model: model,
		cache: cache,
		dim:   model.Dimensions(),
	}
}

// Dimensions returns the vector size D.
func (e *Embedder) Dimensions() int {
	return e.dim
}

// ModelName returns the underlying model name.
func (e *Embedder) ModelName() string {
	return e.model.ModelName()
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, e.dim), nil
	}

	model := e.model.ModelName()
	if e.cache != nil {
		vec, ok, err := e.cache.Get(ctx, model, text)
		switch {
		case err != nil:
			logger.Warn("Embedding cache read failed: %v", err)
		case ok && len(vec) == e.dim:
			return vec, nil
		case ok:
			logger.Warn("Ignoring cached vector of size %d, want %d", len(vec), e.dim)
		}
	}

	vec, err := e.model.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vec) != e.dim {
		return nil, fmt.Errorf("embed: %w: model %s returned %d values, want %d",
			domain.ErrDimensionMismatch, model, len(vec), e.dim)
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, model, text, vec); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
	return vec, nil
}

// EmbedSection returns the three vectors of a section keyed by field.
func (e *Embedder) EmbedSection(ctx context.Context, section domain.Section) (map[domain.VectorField][]float32, error) {
	vectors := make(map[domain.VectorField][]float32, 3)
	for _, field := range domain.AllVectorFields() {
		vec, err := e.Embed(ctx, section.Field(field))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		vectors[field] = vec
	}
	return vectors, nil
}
