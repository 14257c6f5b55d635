package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
)

// --- Mock implementations ---

const testDim = 4

// axis returns a unit vector along dimension i.
func axis(i int) []float32 {
	vec := make([]float32, testDim)
	vec[i] = 1
	return vec
}

// mockEmbeddingService maps known texts to fixed vectors.
// Unknown texts embed to the last axis.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	dims     int
	calls    int
}

func newMockEmbeddingService(vectors map[string][]float32) *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors:  vectors,
		fallback: axis(testDim - 1),
		dims:     testDim,
	}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return append([]float32(nil), vec...), nil
	}
	return append([]float32(nil), m.fallback...), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

// mockCache records puts and serves preset entries.
type mockCache struct {
	entries map[string][]float32
	getErr  error
	putErr  error
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]float32)}
}

func (c *mockCache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	vec, ok := c.entries[model+"|"+text]
	return vec, ok, nil
}

func (c *mockCache) Put(_ context.Context, model, text string, vec []float32) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[model+"|"+text] = vec
	return nil
}

func (c *mockCache) Close() error { return nil }

var _ driven.EmbeddingCache = (*mockCache)(nil)

// mockCollections lets retrieval and ingest tests control the store side.
type mockCollections struct {
	schema    domain.CollectionSchema
	hits      []domain.Hit
	searchErr error
	loadErr   error
	ensureErr error
	indexErr  error
	insertErr error
	created   bool

	loads    int
	indexes  int
	ensures  int
	inserted []domain.Section
	searched []domain.VectorField
}

func newMockCollections() *mockCollections {
	return &mockCollections{schema: domain.NewCollectionSchema("mock", testDim)}
}

func (m *mockCollections) EnsureCollection(context.Context) (domain.Collection, error) {
	m.ensures++
	if m.ensureErr != nil {
		return domain.Collection{}, m.ensureErr
	}
	return domain.Collection{Schema: m.schema, Created: m.created}, nil
}

func (m *mockCollections) BuildIndex(context.Context) error {
	m.indexes++
	return m.indexErr
}

func (m *mockCollections) Insert(_ context.Context, sections []domain.Section) ([]int64, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	ids := make([]int64, len(sections))
	for i := range sections {
		ids[i] = int64(len(m.inserted) + i + 1)
	}
	m.inserted = append(m.inserted, sections...)
	return ids, nil
}

func (m *mockCollections) Load(context.Context) error {
	m.loads++
	return m.loadErr
}

func (m *mockCollections) Search(
	_ context.Context, _ []float32, field domain.VectorField, limit int,
) ([]domain.Hit, error) {
	m.searched = append(m.searched, field)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *mockCollections) Schema() domain.CollectionSchema { return m.schema }

var _ driving.CollectionService = (*mockCollections)(nil)

// mockRetriever answers from a fixed table keyed by query text.
type mockRetriever struct {
	results map[string][]domain.QueryResult
	errOn   string
	queries []string
	opts    []domain.QueryOptions
}

func (m *mockRetriever) Query(_ context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	m.queries = append(m.queries, text)
	m.opts = append(m.opts, opts)
	if text == m.errOn {
		return nil, errors.New("retrieval failed")
	}
	return m.results[text], nil
}

var _ driving.RetrievalService = (*mockRetriever)(nil)

// mockSectionStore records saved documents.
type mockSectionStore struct {
	saved   map[string][]domain.Section
	saveErr error
}

func newMockSectionStore() *mockSectionStore {
	return &mockSectionStore{saved: make(map[string][]domain.Section)}
}

func (m *mockSectionStore) Save(_ context.Context, name string, sections []domain.Section) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[name] = sections
	return nil
}

func (m *mockSectionStore) Load(_ context.Context, name string) ([]domain.Section, error) {
	sections, ok := m.saved[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sections, nil
}

func (m *mockSectionStore) List(context.Context) ([]string, error) {
	names := make([]string, 0, len(m.saved))
	for name := range m.saved {
		names = append(names, name)
	}
	return names, nil
}

var _ driven.SectionStore = (*mockSectionStore)(nil)
