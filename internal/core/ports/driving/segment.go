package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// SegmentService splits markdown documents into section records.
type SegmentService interface {
	// Segment parses document text. A document without second-level
	// headings yields an empty slice, not an error.
	Segment(document string) []domain.Section

	// SegmentReader parses a document from r.
	SegmentReader(ctx context.Context, r io.Reader) ([]domain.Section, error)

	// SegmentFile parses the document at path.
	SegmentFile(ctx context.Context, path string) ([]domain.Section, error)
}
