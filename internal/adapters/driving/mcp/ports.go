package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
)

// SectionReader reads persisted segmented documents.
type SectionReader interface {
	Load(ctx context.Context, name string) ([]domain.Section, error)
	List(ctx context.Context) ([]string, error)
}

// Ports aggregates the services the MCP server exposes.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers similarity queries.
	Retrieval driving.RetrievalService

	// Segment splits documents. Optional.
	Segment driving.SegmentService

	// Ingest stores documents. Optional.
	Ingest driving.IngestService

	// Corpus builds grouped results. Optional.
	Corpus driving.CorpusService

	// Sections serves saved documents as resources. Optional.
	Sections SectionReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
