package driven

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// SectionStore persists segmented sections under a name so segmentation and
// insertion can run as separate steps.
type SectionStore interface {
	// Save writes the sections in order, replacing any previous set.
	Save(ctx context.Context, name string, sections []domain.Section) error

	// Load returns the sections saved under name.
	// Returns domain.ErrNotFound if nothing was saved.
	Load(ctx context.Context, name string) ([]domain.Section, error)

	// List returns the saved names in lexical order.
	List(ctx context.Context) ([]string, error)
}
