package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"store.backend": "memory",
		"index.m":       8,
	})

	assert.Equal(t, "memory", store.GetString("store.backend"))
	assert.Equal(t, 8, store.GetInt("index.m"))
	assert.Equal(t, ":memory:", store.Path())

	var _ driven.ConfigStore = store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("query.threshold", 0.75))
	require.NoError(t, store.Set("query.limit", 3))
	require.NoError(t, store.Set("store.use_tls", true))

	assert.InDelta(t, 0.75, store.GetFloat("query.threshold"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("query.limit"), 1e-9)
	assert.Equal(t, 3, store.GetInt("query.limit"))
	assert.True(t, store.GetBool("store.use_tls"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_SaveLoadNoop(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}
