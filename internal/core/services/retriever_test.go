package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

// newPaperRetriever ingests the two-section paper into a memory store.
func newPaperRetriever(t *testing.T) *RetrievalService {
	t.Helper()
	model := newMockEmbeddingService(paperVectors())
	collections, _ := newTestCollection(t, model)
	_, err := collections.Insert(context.Background(), paperSections())
	require.NoError(t, err)
	return NewRetrievalService(collections, collections.embedder)
}

func TestRetrievalService_AbstractScenario(t *testing.T) {
	retriever := newPaperRetriever(t)

	results, err := retriever.Query(context.Background(), "Abstract", domain.QueryOptions{
		Field:     domain.FieldSectionTitle,
		Limit:     1,
		Threshold: 0.90,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "This paper studies X.", results[0].Text)
	assert.GreaterOrEqual(t, results[0].Similarity, 0.90)
}

func TestRetrievalService_RoundTripAtZeroThreshold(t *testing.T) {
	retriever := newPaperRetriever(t)

	for _, section := range paperSections() {
		results, err := retriever.Query(context.Background(), section.SectionTitle, domain.QueryOptions{
			Field: domain.FieldSectionTitle,
			Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, section.Content, results[0].Text)
	}
}

func TestRetrievalService_ThresholdMonotonic(t *testing.T) {
	retriever := newPaperRetriever(t)
	ctx := context.Background()

	count := func(threshold float64) int {
		results, err := retriever.Query(ctx, "Abstract", domain.QueryOptions{
			Field:     domain.FieldSectionTitle,
			Limit:     2,
			Threshold: threshold,
		})
		require.NoError(t, err)
		for _, r := range results {
			assert.GreaterOrEqual(t, r.Similarity, threshold)
		}
		return len(results)
	}

	low, mid, high := count(-1), count(0.5), count(1.01)
	assert.Equal(t, 2, low)
	assert.Equal(t, 1, mid)
	assert.Equal(t, 0, high)
	assert.GreaterOrEqual(t, low, mid)
	assert.GreaterOrEqual(t, mid, high)
}

func TestRetrievalService_ResultsOrderedBySimilarity(t *testing.T) {
	retriever := newPaperRetriever(t)

	results, err := retriever.Query(context.Background(), "Introduction", domain.QueryOptions{
		Field:     domain.FieldSectionTitle,
		Limit:     2,
		Threshold: -1,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Background on X.", results[0].Text)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestRetrievalService_ShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts domain.QueryOptions
	}{
		{name: "empty text", text: "", opts: domain.DefaultQueryOptions()},
		{name: "whitespace text", text: "  \n\t", opts: domain.DefaultQueryOptions()},
		{name: "zero limit", text: "Abstract", opts: domain.QueryOptions{Field: domain.FieldSectionTitle}},
		{name: "negative limit", text: "Abstract", opts: domain.QueryOptions{Field: domain.FieldSectionTitle, Limit: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collections := newMockCollections()
			model := newMockEmbeddingService(nil)
			retriever := NewRetrievalService(collections, NewEmbedder(model, nil))

			results, err := retriever.Query(context.Background(), tt.text, tt.opts)

			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
			assert.Zero(t, model.callCount())
			assert.Empty(t, collections.searched)
		})
	}
}

func TestRetrievalService_DefaultsFieldToSectionTitle(t *testing.T) {
	collections := newMockCollections()
	retriever := NewRetrievalService(collections, NewEmbedder(newMockEmbeddingService(nil), nil))

	_, err := retriever.Query(context.Background(), "Abstract", domain.QueryOptions{Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, []domain.VectorField{domain.FieldSectionTitle}, collections.searched)
}

func TestRetrievalService_UnknownField(t *testing.T) {
	retriever := NewRetrievalService(newMockCollections(), NewEmbedder(newMockEmbeddingService(nil), nil))

	_, err := retriever.Query(context.Background(), "Abstract", domain.QueryOptions{
		Field: domain.VectorField("summary_embedding"),
		Limit: 1,
	})

	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestRetrievalService_LoadsOnce(t *testing.T) {
	collections := newMockCollections()
	retriever := NewRetrievalService(collections, NewEmbedder(newMockEmbeddingService(nil), nil))
	opts := domain.DefaultQueryOptions()

	for range 3 {
		_, err := retriever.Query(context.Background(), "Abstract", opts)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, collections.loads)
}

func TestRetrievalService_RetriesFailedLoad(t *testing.T) {
	collections := newMockCollections()
	collections.loadErr = domain.ErrVectorStoreUnavailable
	retriever := NewRetrievalService(collections, NewEmbedder(newMockEmbeddingService(nil), nil))
	opts := domain.DefaultQueryOptions()

	_, err := retriever.Query(context.Background(), "Abstract", opts)
	require.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)

	collections.loadErr = nil
	_, err = retriever.Query(context.Background(), "Abstract", opts)
	require.NoError(t, err)

	assert.Equal(t, 2, collections.loads)
}

func TestRetrievalService_PropagatesErrors(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		model := newMockEmbeddingService(nil)
		model.embedErr = domain.ErrEmbeddingUnavailable
		retriever := NewRetrievalService(newMockCollections(), NewEmbedder(model, nil))

		_, err := retriever.Query(context.Background(), "Abstract", domain.DefaultQueryOptions())
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("search", func(t *testing.T) {
		collections := newMockCollections()
		collections.searchErr = errors.New("index gone")
		retriever := NewRetrievalService(collections, NewEmbedder(newMockEmbeddingService(nil), nil))

		_, err := retriever.Query(context.Background(), "Abstract", domain.DefaultQueryOptions())
		assert.ErrorContains(t, err, "index gone")
	})
}

func TestFilterHits(t *testing.T) {
	hits := []domain.Hit{
		{ID: 1, Text: "a", Similarity: 0.95},
		{ID: 2, Text: "b", Similarity: 0.90},
		{ID: 3, Text: "c", Similarity: 0.89},
	}

	tests := []struct {
		name      string
		threshold float64
		expected  []string
	}{
		{name: "inclusive boundary", threshold: 0.90, expected: []string{"a", "b"}},
		{name: "keeps all", threshold: 0, expected: []string{"a", "b", "c"}},
		{name: "drops all", threshold: 0.99, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := FilterHits(hits, tt.threshold)

			texts := make([]string, 0, len(results))
			for _, r := range results {
				texts = append(texts, r.Text)
			}
			assert.Equal(t, tt.expected, texts)
		})
	}
}

func TestFilterHits_Empty(t *testing.T) {
	results := FilterHits(nil, 0.5)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}
