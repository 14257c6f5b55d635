package hnsw

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	chnsw "github.com/coder/hnsw"

	"github.com/custodia-labs/sercha-sections/internal/vecenc"
)

// Default configuration values.
const (
	DefaultM              = 16
	DefaultEfConstruction = 200
	DefaultEfSearch       = 128
)

// Errors returned by the index.
var (
	ErrDimension    = errors.New("hnsw: dimension mismatch")
	ErrDuplicateKey = errors.New("hnsw: duplicate key")
	ErrClosed       = errors.New("hnsw: index is closed")
)

// Config holds index construction parameters.
type Config struct {
	// Dimension is the vector length. Required.
	Dimension int

	// Space selects the similarity function.
	Space Space

	// M is the maximum neighbour count per node.
	M int

	// EfConstruction is the candidate list size while inserting.
	EfConstruction int

	// EfSearch is the candidate list size while searching.
	EfSearch int
}

// Result is one search hit.
type Result struct {
	Key        uint64
	Similarity float32
}

// Index is an in-memory HNSW graph. It is safe for concurrent use.
//
// Each graph node is keyed by the first row key that carried its vector;
// members lists every row key sharing that vector in insertion order.
type Index struct {
	mu sync.Mutex

	cfg   Config
	graph *chnsw.Graph[uint64]

	groups  map[string]uint64
	vectors map[uint64][]float32
	members map[uint64][]uint64
	keys    map[uint64]struct{}
	closed  bool
}

// New creates an empty index. Zero-valued tuning fields take their defaults.
func New(cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		return nil, errors.New("hnsw: dimension must be positive")
	}
	if cfg.M == 0 {
		cfg.M = DefaultM
	}
	if cfg.M < 2 {
		return nil, fmt.Errorf("hnsw: M must be at least 2, got %d", cfg.M)
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = DefaultEfConstruction
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = DefaultEfSearch
	}

	g := chnsw.NewGraph[uint64]()
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Distance = cfg.Space.distance

	return &Index{
		cfg:     cfg,
		graph:   g,
		groups:  make(map[string]uint64),
		vectors: make(map[uint64][]float32),
		members: make(map[uint64][]uint64),
		keys:    make(map[uint64]struct{}),
	}, nil
}

// Dimension returns the vector length.
func (x *Index) Dimension() int {
	return x.cfg.Dimension
}

// Config returns the effective configuration.
func (x *Index) Config() Config {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.cfg
}

// Len returns the number of keys in the index.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.keys)
}

// Nodes returns the number of distinct vectors in the graph.
func (x *Index) Nodes() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.vectors)
}

// SetEf changes the search candidate list size.
func (x *Index) SetEf(ef int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if ef > 0 {
		x.cfg.EfSearch = ef
	}
}

// Check reports whether Add would accept key and vec.
func (x *Index) Check(key uint64, vec []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.check(key, vec)
}

func (x *Index) check(key uint64, vec []float32) error {
	if x.closed {
		return ErrClosed
	}
	if len(vec) != x.cfg.Dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vec), x.cfg.Dimension)
	}
	if _, ok := x.keys[key]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateKey, key)
	}
	return nil
}

// Add inserts vec under key. A vector already in the graph gains key as a
// member instead of a new node.
func (x *Index) Add(key uint64, vec []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.check(key, vec); err != nil {
		return err
	}
	x.keys[key] = struct{}{}

	group := string(vecenc.Encode(vec))
	if node, ok := x.groups[group]; ok {
		x.members[node] = append(x.members[node], key)
		return nil
	}

	stored := slices.Clone(vec)
	x.groups[group] = key
	x.vectors[key] = stored
	x.members[key] = []uint64{key}

	x.graph.EfSearch = x.cfg.EfConstruction
	x.graph.Add(chnsw.MakeNode(key, stored))
	return nil
}

// Search returns up to k results, most similar first. Equal scores keep
// insertion order within a vector and key order across vectors.
func (x *Index) Search(query []float32, k int) ([]Result, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil, ErrClosed
	}
	if len(query) != x.cfg.Dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(query), x.cfg.Dimension)
	}
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}

	// Ask the graph for the ef best nodes and keep the top k of those.
	want := min(max(k, x.cfg.EfSearch), len(x.vectors))
	x.graph.EfSearch = want
	nodes := x.graph.Search(query, want)

	ranked := make([]Result, 0, len(x.vectors))
	if len(nodes) < want {
		// The graph walk came back short; score every node instead.
		for node, vec := range x.vectors {
			ranked = append(ranked, Result{Key: node, Similarity: x.cfg.Space.similarity(query, vec)})
		}
	} else {
		for _, n := range nodes {
			ranked = append(ranked, Result{Key: n.Key, Similarity: x.cfg.Space.similarity(query, x.vectors[n.Key])})
		}
	}
	slices.SortFunc(ranked, func(a, b Result) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	results := make([]Result, 0, k)
	for _, r := range ranked {
		for _, key := range x.members[r.Key] {
			if len(results) == k {
				return results, nil
			}
			results = append(results, Result{Key: key, Similarity: r.Similarity})
		}
	}
	return results, nil
}

// Close releases the graph. Further calls return ErrClosed.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	x.graph = nil
	x.groups = nil
	x.vectors = nil
	x.members = nil
	return nil
}
