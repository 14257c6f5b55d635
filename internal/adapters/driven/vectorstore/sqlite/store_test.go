package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/storetest"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) driven.VectorStore {
		return setupTestStore(t, t.TempDir())
	})
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := setupTestStore(t, dir)

	assert.Equal(t, filepath.Join(dir, DatabaseFileName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	schema := domain.NewCollectionSchema("papers", storetest.Dim)

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.EnsureCollection(ctx, schema)
	require.NoError(t, err)
	require.NoError(t, store.BuildIndex(ctx, schema.Name, domain.DefaultIndexParams()))
	_, err = store.Insert(ctx, schema.Name, []domain.Row{
		storetest.Row("kept", 0, 1, 2),
	})
	require.NoError(t, err)
	require.NoError(t, store.Flush(ctx, schema.Name))
	_, err = store.Insert(ctx, schema.Name, []domain.Row{
		storetest.Row("never flushed", 0, 1, 2),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := setupTestStore(t, dir)

	coll, err := reopened.EnsureCollection(ctx, schema)
	require.NoError(t, err)
	assert.False(t, coll.Created)
	assert.Equal(t, schema.Description, coll.Schema.Description)

	require.NoError(t, reopened.Load(ctx, schema.Name))
	hits, err := reopened.Search(ctx, schema.Name, storetest.Axis(1), domain.FieldSectionTitle, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "kept", hits[0].Text)
}

func TestStore_FlushAfterLoadIndexesNewRows(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, t.TempDir())
	schema := domain.NewCollectionSchema("papers", storetest.Dim)

	_, err := store.EnsureCollection(ctx, schema)
	require.NoError(t, err)
	require.NoError(t, store.BuildIndex(ctx, schema.Name, domain.DefaultIndexParams()))
	require.NoError(t, store.Load(ctx, schema.Name))

	ids, err := store.Insert(ctx, schema.Name, []domain.Row{storetest.Row("late", 0, 0, 3)})
	require.NoError(t, err)

	hits, err := store.Search(ctx, schema.Name, storetest.Axis(3), domain.FieldContent, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, store.Flush(ctx, schema.Name))
	hits, err = store.Search(ctx, schema.Name, storetest.Axis(3), domain.FieldContent, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, ids[0], hits[0].ID)
}

func TestStore_FlushLeavesRowsPendingWhenIndexingFails(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, t.TempDir())
	schema := domain.NewCollectionSchema("papers", storetest.Dim)

	_, err := store.EnsureCollection(ctx, schema)
	require.NoError(t, err)
	require.NoError(t, store.BuildIndex(ctx, schema.Name, domain.DefaultIndexParams()))
	require.NoError(t, store.Load(ctx, schema.Name))

	ids, err := store.Insert(ctx, schema.Name, []domain.Row{storetest.Row("late", 0, 0, 3)})
	require.NoError(t, err)

	clash := storetest.Row("clash", 1, 1, 1)
	clash.ID = ids[0]
	require.NoError(t, store.graph(schema.Name).Add([]domain.Row{clash}))

	err = store.Flush(ctx, schema.Name)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	var flushed int
	require.NoError(t, store.db.QueryRow("SELECT flushed FROM records WHERE id = ?", ids[0]).Scan(&flushed))
	assert.Equal(t, 0, flushed)
	assert.Equal(t, 1, store.graph(schema.Name).Len())
}

func TestStore_Release(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, t.TempDir())
	_, err := store.EnsureCollection(ctx, domain.NewCollectionSchema("c", storetest.Dim))
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx, "c"))

	store.Release("c")

	_, err = store.Search(ctx, "c", storetest.Axis(0), domain.FieldContent, 1)
	assert.ErrorIs(t, err, domain.ErrCollectionNotLoaded)
}

func TestStore_SearchMissingCollection(t *testing.T) {
	store := setupTestStore(t, t.TempDir())

	_, err := store.Search(context.Background(), "nope", storetest.Axis(0), domain.FieldContent, 1)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}
