package driving

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// RetrievalService answers thresholded similarity queries.
type RetrievalService interface {
	// Query embeds text, searches opts.Field for opts.Limit candidates and
	// keeps those with similarity >= opts.Threshold, best first.
	Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
