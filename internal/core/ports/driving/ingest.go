package driving

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// IngestService runs the full pipeline: segment, ensure collection, index, insert.
type IngestService interface {
	// IngestDocument segments and stores a document held in memory.
	IngestDocument(ctx context.Context, name, document string) (*domain.IngestReport, error)

	// IngestFile segments and stores the document at path.
	IngestFile(ctx context.Context, path string) (*domain.IngestReport, error)

	// IngestSections stores already segmented sections.
	IngestSections(ctx context.Context, name string, sections []domain.Section) (*domain.IngestReport, error)
}
