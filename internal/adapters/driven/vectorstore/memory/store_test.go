package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/storetest"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) driven.VectorStore {
		s := NewStore()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_UnflushedRowsAreInvisible(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	schema := domain.NewCollectionSchema("c", storetest.Dim)

	_, err := s.EnsureCollection(ctx, schema)
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx, "c", domain.DefaultIndexParams()))
	require.NoError(t, s.Load(ctx, "c"))

	_, err = s.Insert(ctx, "c", []domain.Row{storetest.Row("x", 0, 0, 0)})
	require.NoError(t, err)

	hits, err := s.Search(ctx, "c", storetest.Axis(0), domain.FieldSectionTitle, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, s.Flush(ctx, "c"))
	hits, err = s.Search(ctx, "c", storetest.Axis(0), domain.FieldSectionTitle, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_IDsIncrement(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.EnsureCollection(ctx, domain.NewCollectionSchema("c", storetest.Dim))
	require.NoError(t, err)

	first, err := s.Insert(ctx, "c", []domain.Row{storetest.Row("a", 0, 0, 0), storetest.Row("b", 0, 0, 0)})
	require.NoError(t, err)
	second, err := s.Insert(ctx, "c", []domain.Row{storetest.Row("c", 0, 0, 0)})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, first)
	assert.Equal(t, []int64{3}, second)
}

func TestStore_Release(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.EnsureCollection(ctx, domain.NewCollectionSchema("c", storetest.Dim))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx, "c", domain.DefaultIndexParams()))
	require.NoError(t, s.Load(ctx, "c"))

	s.Release("c")

	_, err = s.Search(ctx, "c", storetest.Axis(0), domain.FieldSectionTitle, 1)
	assert.ErrorIs(t, err, domain.ErrCollectionNotLoaded)
}

func TestStore_Closed(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Close())

	_, err := s.EnsureCollection(context.Background(), domain.NewCollectionSchema("c", storetest.Dim))
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}
