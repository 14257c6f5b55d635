package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error

	lastText string
	lastOpts domain.QueryOptions
}

func (m *mockRetrievalService) Query(
	_ context.Context,
	text string,
	opts domain.QueryOptions,
) ([]domain.QueryResult, error) {
	m.lastText = text
	m.lastOpts = opts
	return m.results, m.err
}

// mockSegmentService is a mock implementation of driving.SegmentService.
type mockSegmentService struct {
	sections []domain.Section
	err      error
}

func (m *mockSegmentService) Segment(_ string) []domain.Section {
	return m.sections
}

func (m *mockSegmentService) SegmentReader(_ context.Context, _ io.Reader) ([]domain.Section, error) {
	return m.sections, m.err
}

func (m *mockSegmentService) SegmentFile(_ context.Context, _ string) ([]domain.Section, error) {
	return m.sections, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error

	lastName string
	lastPath string
}

func (m *mockIngestService) IngestDocument(_ context.Context, name, _ string) (*domain.IngestReport, error) {
	m.lastName = name
	return m.report, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.IngestReport, error) {
	m.lastPath = path
	return m.report, m.err
}

func (m *mockIngestService) IngestSections(
	_ context.Context, name string, _ []domain.Section,
) (*domain.IngestReport, error) {
	m.lastName = name
	return m.report, m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	corpus  *domain.Corpus
	err     error
	queries []string
}

func (m *mockCorpusService) Build(_ context.Context, userQueries ...string) (*domain.Corpus, error) {
	m.queries = userQueries
	return m.corpus, m.err
}

// mockSectionReader is a mock implementation of SectionReader.
type mockSectionReader struct {
	documents map[string][]domain.Section
	names     []string
	err       error
}

func (m *mockSectionReader) Load(_ context.Context, name string) ([]domain.Section, error) {
	if m.err != nil {
		return nil, m.err
	}
	sections, ok := m.documents[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sections, nil
}

func (m *mockSectionReader) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}
