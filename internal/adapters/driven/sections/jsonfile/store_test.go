package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "sections"))
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sections := []domain.Section{
		{MainTitle: "Paper", SectionTitle: "Abstract", Content: "This paper studies X."},
		{MainTitle: "Paper", SectionTitle: "Introduction", Content: "Background on X.\nMore <b>."},
	}

	require.NoError(t, s.Save(ctx, "docs/paper.md", sections))

	got, err := s.Load(ctx, "docs/paper.md")
	require.NoError(t, err)
	assert.Equal(t, sections, got)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "a", []domain.Section{{SectionTitle: "Old"}}))
	require.NoError(t, s.Save(ctx, "a", []domain.Section{{SectionTitle: "New"}}))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].SectionTitle)
}

func TestStore_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "empty", nil))
	got, err := s.Load(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, []domain.Section{}, got)
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := newTestStore(t).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveRequiresName(t *testing.T) {
	err := newTestStore(t).Save(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, "b.md", nil))
	require.NoError(t, s.Save(ctx, "/abs/a.md", nil))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0600))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/abs/a.md", "b.md"}, names)
}

func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.path("bad"), []byte("{not json"), 0600))

	_, err := s.Load(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarshal_Format(t *testing.T) {
	data, err := Marshal([]domain.Section{{MainTitle: "M", SectionTitle: "S", Content: "a & b"}})
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "\"main title\": \"M\"")
	assert.Contains(t, text, "\"section title\": \"S\"")
	assert.Contains(t, text, "a & b")
	assert.True(t, strings.HasPrefix(text, "[\n    {"))
}
