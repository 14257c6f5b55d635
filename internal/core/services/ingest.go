package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs segment, ensure collection, build index and insert.
type IngestService struct {
	segmenter   driving.SegmentService
	collections driving.CollectionService
	sections    driven.SectionStore
}

// NewIngestService creates a new ingest service.
// The sections store is optional (can be nil); when set, every segmented
// document is persisted in its serialized form before insertion.
func NewIngestService(
	segmenter driving.SegmentService,
	collections driving.CollectionService,
	sections driven.SectionStore,
) *IngestService {
	return &IngestService{
		segmenter:   segmenter,
		collections: collections,
		sections:    sections,
	}
}

// IngestDocument segments and stores a document held in memory.
func (s *IngestService) IngestDocument(ctx context.Context, name, document string) (*domain.IngestReport, error) {
	return s.IngestSections(ctx, name, s.segmenter.Segment(document))
}

// IngestFile segments and stores the document at path.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.IngestReport, error) {
	sections, err := s.segmenter.SegmentFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return s.IngestSections(ctx, path, sections)
}

// IngestSections stores already segmented sections.
// An empty section list still ensures the collection and its index.
func (s *IngestService) IngestSections(
	ctx context.Context, name string, sections []domain.Section,
) (*domain.IngestReport, error) {
	report := &domain.IngestReport{
		BatchID:    uuid.New().String(),
		Name:       name,
		Collection: s.collections.Schema().Name,
		Sections:   len(sections),
		IDs:        []int64{},
	}

	logger.Section("Ingest")
	logger.Info("Batch %s: %s (%d sections)", report.BatchID, name, len(sections))

	if s.sections != nil && name != "" {
		if err := s.sections.Save(ctx, name, sections); err != nil {
			return nil, fmt.Errorf("ingest %s: save sections: %w", name, err)
		}
	}

	coll, err := s.collections.EnsureCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	report.CollectionCreated = coll.Created

	if err := s.collections.BuildIndex(ctx); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}

	if len(sections) == 0 {
		logger.Debug("No sections found in %s", name)
		return report, nil
	}

	ids, err := s.collections.Insert(ctx, sections)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	report.IDs = ids

	logger.Info("Batch %s: inserted %d rows", report.BatchID, len(ids))
	return report, nil
}
