// Package storetest is a behavioural test suite shared by every
// driven.VectorStore implementation.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// Dim is the vector size used by the suite.
const Dim = 4

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) driven.VectorStore

// Row builds a row whose three vectors are the given axis unit vectors.
func Row(text string, mainAxis, sectionAxis, contentAxis int) domain.Row {
	return domain.Row{
		Vectors: map[domain.VectorField][]float32{
			domain.FieldMainTitle:    Axis(mainAxis),
			domain.FieldSectionTitle: Axis(sectionAxis),
			domain.FieldContent:      Axis(contentAxis),
		},
		Text: text,
	}
}

// Axis returns the unit vector along axis i, or a zero vector when i < 0.
func Axis(i int) []float32 {
	v := make([]float32, Dim)
	if i >= 0 {
		v[i] = 1
	}
	return v
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()
	schema := domain.NewCollectionSchema("papers", Dim)
	params := domain.DefaultIndexParams()

	setup := func(t *testing.T) driven.VectorStore {
		t.Helper()
		s := newStore(t)
		_, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)
		require.NoError(t, s.BuildIndex(ctx, schema.Name, params))
		return s
	}

	t.Run("ensure collection is idempotent", func(t *testing.T) {
		s := newStore(t)

		first, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)
		assert.True(t, first.Created)

		second, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Name(), second.Name())
		assert.Equal(t, first.Schema.Dimension, second.Schema.Dimension)
	})

	t.Run("incompatible schema conflicts", func(t *testing.T) {
		s := newStore(t)
		_, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)

		_, err = s.EnsureCollection(ctx, domain.NewCollectionSchema(schema.Name, Dim*2))
		assert.ErrorIs(t, err, domain.ErrSchemaConflict)
	})

	t.Run("invalid schema is rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.EnsureCollection(ctx, domain.NewCollectionSchema("", Dim))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("round trip", func(t *testing.T) {
		s := setup(t)

		ids, err := s.Insert(ctx, schema.Name, []domain.Row{
			Row("This paper studies X.", 0, 1, 2),
			Row("Background on X.", 0, 2, 3),
		})
		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))

		hits, err := s.Search(ctx, schema.Name, Axis(1), domain.FieldSectionTitle, 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "This paper studies X.", hits[0].Text)
		assert.Equal(t, ids[0], hits[0].ID)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

		hits, err = s.Search(ctx, schema.Name, Axis(3), domain.FieldContent, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Background on X.", hits[0].Text)
	})

	t.Run("hits are ordered by descending similarity", func(t *testing.T) {
		s := setup(t)
		_, err := s.Insert(ctx, schema.Name, []domain.Row{
			Row("a", 0, 0, 0),
			Row("b", 0, 1, 0),
			Row("c", 0, 2, 0),
		})
		require.NoError(t, err)
		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))

		query := []float32{0.1, 0.9, 0.3, 0}
		hits, err := s.Search(ctx, schema.Name, query, domain.FieldSectionTitle, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{hits[0].Text, hits[1].Text, hits[2].Text})
		for i := 1; i < len(hits); i++ {
			assert.GreaterOrEqual(t, hits[i-1].Similarity, hits[i].Similarity)
		}
	})

	t.Run("limit bounds the hits", func(t *testing.T) {
		s := setup(t)
		_, err := s.Insert(ctx, schema.Name, []domain.Row{Row("a", 0, 0, 0), Row("b", 0, 1, 0), Row("c", 0, 2, 0)})
		require.NoError(t, err)
		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))

		hits, err := s.Search(ctx, schema.Name, Axis(0), domain.FieldSectionTitle, 2)
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		hits, err = s.Search(ctx, schema.Name, Axis(0), domain.FieldSectionTitle, 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("dimension mismatch inserts nothing", func(t *testing.T) {
		s := setup(t)

		bad := Row("bad", 0, 0, 0)
		bad.Vectors[domain.FieldContent] = []float32{1, 2}
		_, err := s.Insert(ctx, schema.Name, []domain.Row{Row("good", 0, 1, 0), bad})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))
		hits, err := s.Search(ctx, schema.Name, Axis(1), domain.FieldSectionTitle, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("search requires load", func(t *testing.T) {
		s := setup(t)

		_, err := s.Search(ctx, schema.Name, Axis(0), domain.FieldSectionTitle, 1)
		assert.ErrorIs(t, err, domain.ErrCollectionNotLoaded)
	})

	t.Run("search on unindexed field", func(t *testing.T) {
		s := newStore(t)
		_, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)
		require.NoError(t, s.Load(ctx, schema.Name))

		_, err = s.Search(ctx, schema.Name, Axis(0), domain.FieldSectionTitle, 1)
		assert.ErrorIs(t, err, domain.ErrFieldNotIndexed)
	})

	t.Run("search on unknown field", func(t *testing.T) {
		s := setup(t)
		require.NoError(t, s.Load(ctx, schema.Name))

		_, err := s.Search(ctx, schema.Name, Axis(0), domain.VectorField("text"), 1)
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})

	t.Run("missing collection", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Insert(ctx, "nope", []domain.Row{Row("x", 0, 0, 0)})
		assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
		assert.ErrorIs(t, s.BuildIndex(ctx, "nope", params), domain.ErrCollectionNotFound)
		assert.ErrorIs(t, s.Load(ctx, "nope"), domain.ErrCollectionNotFound)
	})

	t.Run("index built after insert covers existing rows", func(t *testing.T) {
		s := newStore(t)
		_, err := s.EnsureCollection(ctx, schema)
		require.NoError(t, err)
		_, err = s.Insert(ctx, schema.Name, []domain.Row{Row("early", 0, 2, 0)})
		require.NoError(t, err)
		require.NoError(t, s.Flush(ctx, schema.Name))

		require.NoError(t, s.BuildIndex(ctx, schema.Name, params))
		require.NoError(t, s.Load(ctx, schema.Name))

		hits, err := s.Search(ctx, schema.Name, Axis(2), domain.FieldSectionTitle, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "early", hits[0].Text)
	})

	t.Run("rebuilding the index keeps rows", func(t *testing.T) {
		s := setup(t)
		_, err := s.Insert(ctx, schema.Name, []domain.Row{Row("kept", 0, 3, 0)})
		require.NoError(t, err)
		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))

		require.NoError(t, s.BuildIndex(ctx, schema.Name, params))
		rebuilt := params
		rebuilt.M = 8
		require.NoError(t, s.BuildIndex(ctx, schema.Name, rebuilt))

		hits, err := s.Search(ctx, schema.Name, Axis(3), domain.FieldSectionTitle, 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "kept", hits[0].Text)
	})

	t.Run("zero vectors are stored", func(t *testing.T) {
		s := setup(t)
		_, err := s.Insert(ctx, schema.Name, []domain.Row{Row("", -1, 0, -1)})
		require.NoError(t, err)
		require.NoError(t, s.Flush(ctx, schema.Name))
		require.NoError(t, s.Load(ctx, schema.Name))

		hits, err := s.Search(ctx, schema.Name, Axis(0), domain.FieldMainTitle, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.InDelta(t, 0.0, hits[0].Similarity, 1e-9)
	})
}
