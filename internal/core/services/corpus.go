package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// Default user query options: content field, ten candidates, 0.85 threshold.
const (
	DefaultUserQueryLimit     = 10
	DefaultUserQueryThreshold = 0.85
)

// CorpusOption configures a CorpusService.
type CorpusOption func(*CorpusService)

// WithSections overrides the curated section names.
func WithSections(names ...string) CorpusOption {
	return func(s *CorpusService) {
		s.sections = names
	}
}

// WithSectionOptions overrides the options used for curated sections.
func WithSectionOptions(opts domain.QueryOptions) CorpusOption {
	return func(s *CorpusService) {
		s.sectionOpts = opts
	}
}

// WithUserOptions overrides the options used for user queries.
func WithUserOptions(opts domain.QueryOptions) CorpusOption {
	return func(s *CorpusService) {
		s.userOpts = opts
	}
}

// CorpusService queries every curated section title and each user query,
// producing the grouped results consumed by prompt builders.
type CorpusService struct {
	retriever   driving.RetrievalService
	sections    []string
	sectionOpts domain.QueryOptions
	userOpts    domain.QueryOptions
}

// NewCorpusService creates a corpus service with the given options.
func NewCorpusService(retriever driving.RetrievalService, opts ...CorpusOption) *CorpusService {
	s := &CorpusService{
		retriever:   retriever,
		sections:    domain.DefaultSections(),
		sectionOpts: domain.DefaultQueryOptions(),
		userOpts: domain.QueryOptions{
			Field:     domain.FieldContent,
			Limit:     DefaultUserQueryLimit,
			Threshold: DefaultUserQueryThreshold,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build queries the curated sections and the non-empty user queries.
func (s *CorpusService) Build(ctx context.Context, userQueries ...string) (*domain.Corpus, error) {
	logger.Section("Corpus")
	corpus := domain.NewCorpus()

	for _, name := range s.sections {
		results, err := s.retriever.Query(ctx, name, s.sectionOpts)
		if err != nil {
			return nil, fmt.Errorf("corpus section %q: %w", name, err)
		}
		corpus.DefaultResults[name] = results
		logger.Debug("Section %q: %d results", name, len(results))
	}

	for _, q := range userQueries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		results, err := s.retriever.Query(ctx, q, s.userOpts)
		if err != nil {
			return nil, fmt.Errorf("corpus query %q: %w", q, err)
		}
		corpus.AddUserResults(q, results)
		logger.Debug("User query %q: %d results", q, len(results))
	}

	return corpus, nil
}
