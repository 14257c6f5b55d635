package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// QueryInput is the input schema for the query_sections tool.
type QueryInput struct {
	Query     string   `json:"query" jsonschema:"text to match against stored sections"`
	Field     string   `json:"field,omitempty" jsonschema:"vector field: main_title_embedding, section_title_embedding (default) or content_embedding"`
	Limit     int      `json:"limit,omitempty" jsonschema:"number of candidates to fetch (default 1)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity kept (default 0.90)"`
}

// QueryOutput is the output schema for the query_sections tool.
type QueryOutput struct {
	Results []domain.QueryResult `json:"results"`
	Count   int                  `json:"count"`
}

// SegmentInput is the input schema for the segment_document tool.
type SegmentInput struct {
	Document string `json:"document" jsonschema:"markdown text with # and ## headings"`
}

// SegmentOutput is the output schema for the segment_document tool.
type SegmentOutput struct {
	Sections []domain.Section `json:"sections"`
	Count    int              `json:"count"`
}

// IngestInput is the input schema for the ingest_document tool.
// Exactly one of Document and Path is used; Path wins when both are set.
type IngestInput struct {
	Name     string `json:"name,omitempty" jsonschema:"name stored with the sections of an inline document"`
	Document string `json:"document,omitempty" jsonschema:"inline markdown to ingest"`
	Path     string `json:"path,omitempty" jsonschema:"path of a markdown file to ingest"`
}

// CorpusInput is the input schema for the build_corpus tool.
type CorpusInput struct {
	Queries []string `json:"queries,omitempty" jsonschema:"free-text questions searched against section content"`
}

// CorpusOutput is the output schema for the build_corpus tool.
type CorpusOutput struct {
	DefaultResults  map[string][]domain.QueryResult `json:"default_results"`
	UserBasedSearch map[string][]domain.QueryResult `json:"user_based_search"`

	// Sections applies the fallback rule: a curated section with no match
	// borrows the first user-based hits.
	Sections map[string][]domain.QueryResult `json:"sections"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_sections",
		Description: "Find stored sections similar to a text, keeping matches above a similarity threshold",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "segment_document",
		Description: "Split a markdown document into titled sections without storing it",
	}, s.handleSegment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Segment a markdown document, embed its sections and store them for retrieval",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_corpus",
		Description: "Look up the standard paper sections plus optional questions and group the matches",
	}, s.handleCorpus)
}

// handleQuery handles the query_sections tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	opts := domain.DefaultQueryOptions()
	if input.Field != "" {
		opts.Field = domain.VectorField(input.Field)
	}
	if input.Limit > 0 {
		opts.Limit = input.Limit
	}
	if input.Threshold != nil {
		opts.Threshold = *input.Threshold
	}

	results, err := s.ports.Retrieval.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	if results == nil {
		results = []domain.QueryResult{}
	}

	return nil, QueryOutput{Results: results, Count: len(results)}, nil
}

// handleSegment handles the segment_document tool invocation.
func (s *Server) handleSegment(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SegmentInput,
) (*mcp.CallToolResult, SegmentOutput, error) {
	if s.ports.Segment == nil {
		return nil, SegmentOutput{}, fmt.Errorf("segment_document: %w", ErrToolNotConfigured)
	}

	sections := s.ports.Segment.Segment(input.Document)
	return nil, SegmentOutput{Sections: sections, Count: len(sections)}, nil
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestReport, error) {
	if s.ports.Ingest == nil {
		return nil, domain.IngestReport{}, fmt.Errorf("ingest_document: %w", ErrToolNotConfigured)
	}

	var (
		report *domain.IngestReport
		err    error
	)
	switch {
	case strings.TrimSpace(input.Path) != "":
		report, err = s.ports.Ingest.IngestFile(ctx, input.Path)
	case strings.TrimSpace(input.Document) != "":
		report, err = s.ports.Ingest.IngestDocument(ctx, input.Name, input.Document)
	default:
		return nil, domain.IngestReport{}, fmt.Errorf("%w: document or path is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, domain.IngestReport{}, err
	}

	return nil, *report, nil
}

// handleCorpus handles the build_corpus tool invocation.
func (s *Server) handleCorpus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CorpusInput,
) (*mcp.CallToolResult, CorpusOutput, error) {
	if s.ports.Corpus == nil {
		return nil, CorpusOutput{}, fmt.Errorf("build_corpus: %w", ErrToolNotConfigured)
	}

	corpus, err := s.ports.Corpus.Build(ctx, input.Queries...)
	if err != nil {
		return nil, CorpusOutput{}, err
	}

	output := CorpusOutput{
		DefaultResults:  corpus.DefaultResults,
		UserBasedSearch: corpus.UserBasedSearch,
		Sections:        make(map[string][]domain.QueryResult, len(corpus.DefaultResults)),
	}
	for name := range corpus.DefaultResults {
		output.Sections[name] = corpus.ForSection(name)
	}

	return nil, output, nil
}
