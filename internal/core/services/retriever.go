package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers thresholded similarity queries.
type RetrievalService struct {
	collections driving.CollectionService
	embedder    *Embedder

	mu     sync.Mutex
	loaded bool
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(collections driving.CollectionService, embedder *Embedder) *RetrievalService {
	return &RetrievalService{
		collections: collections,
		embedder:    embedder,
	}
}

// Query embeds text, asks the index for opts.Limit candidates on opts.Field
// and keeps those whose similarity is at least opts.Threshold.
// The threshold is applied after retrieval so fewer than Limit results,
// including none, may come back.
func (s *RetrievalService) Query(
	ctx context.Context, text string, opts domain.QueryOptions,
) ([]domain.QueryResult, error) {
	logger.Section("Query")
	logger.Debug("Query: %q field=%s limit=%d threshold=%.2f", text, opts.Field, opts.Limit, opts.Threshold)

	if strings.TrimSpace(text) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.QueryResult{}, nil
	}
	if opts.Limit <= 0 {
		return []domain.QueryResult{}, nil
	}
	if opts.Field == "" {
		opts.Field = domain.FieldSectionTitle
	}
	if !opts.Field.IsValid() {
		return nil, fmt.Errorf("query: %w: %q", domain.ErrUnknownField, opts.Field)
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	hits, err := s.collections.Search(ctx, vec, opts.Field, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := FilterHits(hits, opts.Threshold)
	logger.Debug("Kept %d of %d candidates", len(results), len(hits))
	return results, nil
}

// ensureLoaded loads the collection once per service.
// A failed load is retried on the next query.
func (s *RetrievalService) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}
	if err := s.collections.Load(ctx); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

// FilterHits keeps hits with similarity >= threshold, preserving order.
func FilterHits(hits []domain.Hit, threshold float64) []domain.QueryResult {
	results := make([]domain.QueryResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity >= threshold {
			results = append(results, domain.QueryResult{
				Text:       hit.Text,
				Similarity: hit.Similarity,
			})
		}
	}
	return results
}
