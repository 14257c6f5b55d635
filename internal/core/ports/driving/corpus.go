package driving

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// CorpusService gathers query results for the curated paper sections and
// for user queries.
type CorpusService interface {
	// Build queries every default section and each user query.
	Build(ctx context.Context, userQueries ...string) (*domain.Corpus, error)
}
