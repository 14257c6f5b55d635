// Package qdrant provides a driven.VectorStore backed by a Qdrant server.
//
// Each collection maps to a Qdrant collection with three named dense vectors
// (one per vector field) and the section text in the "text" payload key.
// Qdrant persists and indexes points itself, so Flush and Load only check
// that the collection exists.
//
// Point ids are sequential from 1. Each insert reads the exact point count
// and writes with an update filter on its own batch id, so a point that
// already exists is never overwritten. Requires Qdrant 1.16 or later.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// DefaultPort is the Qdrant gRPC port.
const DefaultPort = 6334

// Payload keys.
const (
	payloadText  = "text"
	payloadBatch = "batch"
)

// maxInsertAttempts bounds id allocation retries when another writer takes
// the same ids.
const maxInsertAttempts = 3

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// api is the subset of *qdrant.Client used by the store.
type api interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	UpdateCollection(ctx context.Context, request *qdrant.UpdateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Close() error
}

// Config holds Qdrant connection configuration.
type Config struct {
	// Host is the Qdrant server host.
	Host string

	// Port is the gRPC port. Defaults to 6334.
	Port int

	// APIKey is optional API key for authentication.
	APIKey string

	// UseTLS enables TLS on the connection.
	UseTLS bool

	// Metric is the distance used when creating collections.
	Metric domain.Metric
}

// Store implements driven.VectorStore on Qdrant.
type Store struct {
	client api
	metric domain.Metric

	mu     sync.Mutex
	ef     map[string]uint64
	loaded map[string]bool
}

// New connects to Qdrant and checks the server is reachable.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: qdrant host is required", domain.ErrInvalidInput)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create qdrant client: %w", domain.ErrVectorStoreUnavailable, err)
	}

	s := newStore(client, cfg.Metric)
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: qdrant at %s:%d: %w", domain.ErrVectorStoreUnavailable, cfg.Host, cfg.Port, err)
	}
	return s, nil
}

func newStore(client api, metric domain.Metric) *Store {
	if !metric.IsValid() {
		metric = domain.MetricInnerProduct
	}
	return &Store{
		client: client,
		metric: metric,
		ef:     make(map[string]uint64),
		loaded: make(map[string]bool),
	}
}

// EnsureCollection creates the collection or returns the compatible existing one.
func (s *Store) EnsureCollection(ctx context.Context, schema domain.CollectionSchema) (domain.Collection, error) {
	if err := schema.Validate(); err != nil {
		return domain.Collection{}, err
	}

	vectors := make(map[string]*qdrant.VectorParams, 3)
	for _, field := range domain.AllVectorFields() {
		vectors[field.String()] = &qdrant.VectorParams{
			Size:     uint64(schema.Dimension),
			Distance: distance(s.metric),
		}
	}
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: schema.Name,
		VectorsConfig:  qdrant.NewVectorsConfigMap(vectors),
	})
	if err == nil {
		return domain.Collection{Schema: schema, Created: true}, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		// Some server versions report an existing collection with another code.
		exists, existsErr := s.client.CollectionExists(ctx, schema.Name)
		if existsErr != nil || !exists {
			return domain.Collection{}, unavailable("creating collection", err)
		}
	}

	dims, err := s.dimensions(ctx, schema.Name)
	if err != nil {
		return domain.Collection{}, err
	}
	for _, field := range domain.AllVectorFields() {
		dim, ok := dims[field]
		if !ok || dim != schema.Dimension {
			return domain.Collection{}, fmt.Errorf("%w: %q field %s has dimension %d, requested %d",
				domain.ErrSchemaConflict, schema.Name, field, dim, schema.Dimension)
		}
	}
	return domain.Collection{Schema: schema}, nil
}

// BuildIndex applies the HNSW parameters. The metric is fixed at creation.
func (s *Store) BuildIndex(ctx context.Context, name string, params domain.IndexParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := s.exists(ctx, name); err != nil {
		return err
	}
	if params.Metric != s.metric {
		return fmt.Errorf("%w: %q uses metric %s, requested %s",
			domain.ErrSchemaConflict, name, s.metric, params.Metric)
	}

	err := s.client.UpdateCollection(ctx, &qdrant.UpdateCollection{
		CollectionName: name,
		HnswConfig: &qdrant.HnswConfigDiff{
			M:           qdrant.PtrOf(uint64(params.M)),
			EfConstruct: qdrant.PtrOf(uint64(params.EfConstruction)),
		},
	})
	if err != nil {
		return unavailable("updating index", err)
	}

	s.mu.Lock()
	s.ef[name] = uint64(params.EfSearch)
	s.mu.Unlock()
	return nil
}

// Insert writes rows under the next free sequential ids.
// Ids taken by a concurrent writer are detected after the write: this
// batch's points are removed and allocation starts again from the new count.
func (s *Store) Insert(ctx context.Context, name string, rows []domain.Row) ([]int64, error) {
	schema, err := s.schema(ctx, name)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := row.Validate(schema); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if len(rows) == 0 {
		return []int64{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		floor   uint64
		lastErr error
	)
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		ids, next, err := s.insert(ctx, name, rows, floor)
		if err == nil {
			return ids, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		floor, lastErr = next, err
	}
	return nil, lastErr
}

// insert makes one allocation attempt starting at count+1 or floor,
// whichever is higher. A lost race removes the points this attempt wrote and
// returns ErrAlreadyExists with the id after the highest one taken, as the
// floor for the next attempt.
func (s *Store) insert(ctx context.Context, name string, rows []domain.Row, floor uint64) ([]int64, uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, 0, unavailable("counting points", err)
	}
	first := max(count+1, floor)

	batch := uuid.NewString()
	points := make([]*qdrant.PointStruct, len(rows))
	pointIDs := make([]*qdrant.PointId, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		id := first + uint64(i)
		vectors := make(map[string]*qdrant.Vector, len(row.Vectors))
		for field, vec := range row.Vectors {
			vectors[field.String()] = qdrant.NewVector(vec...)
		}
		pointIDs[i] = qdrant.NewIDNum(id)
		points[i] = &qdrant.PointStruct{
			Id:      pointIDs[i],
			Vectors: qdrant.NewVectorsMap(vectors),
			Payload: qdrant.NewValueMap(map[string]any{payloadText: row.Text, payloadBatch: batch}),
		}
		ids[i] = int64(id)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
		UpdateFilter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(payloadBatch, batch)},
		},
	})
	if err != nil {
		return nil, 0, unavailable("inserting points", err)
	}

	stored, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: name,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayloadInclude(payloadBatch),
	})
	if err != nil {
		return nil, 0, unavailable("confirming points", err)
	}

	var mine []*qdrant.PointId
	written := make(map[uint64]bool, len(stored))
	for _, point := range stored {
		if point.GetPayload()[payloadBatch].GetStringValue() == batch {
			mine = append(mine, point.GetId())
			written[point.GetId().GetNum()] = true
		}
	}
	if len(mine) == len(points) {
		return ids, 0, nil
	}

	var taken uint64
	for _, id := range ids {
		if !written[uint64(id)] {
			taken = max(taken, uint64(id))
		}
	}

	if len(mine) > 0 {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: name,
			Wait:           qdrant.PtrOf(true),
			Points:         qdrant.NewPointsSelector(mine...),
		})
		if err != nil {
			return nil, 0, unavailable("removing partial batch", err)
		}
	}
	return nil, taken + 1, fmt.Errorf("%w: id %d of %q was taken by another writer",
		domain.ErrAlreadyExists, taken, name)
}

// Flush checks the collection exists. Upserts wait for the write to apply.
func (s *Store) Flush(ctx context.Context, name string) error {
	return s.exists(ctx, name)
}

// Load marks the collection queryable.
func (s *Store) Load(ctx context.Context, name string) error {
	if err := s.exists(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded[name] = true
	s.mu.Unlock()
	return nil
}

// Search queries one named vector of a loaded collection.
func (s *Store) Search(
	ctx context.Context, name string, query []float32, field domain.VectorField, limit int,
) ([]domain.Hit, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}

	s.mu.Lock()
	loaded := s.loaded[name]
	ef := s.ef[name]
	s.mu.Unlock()
	if !loaded {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotLoaded, name)
	}
	if limit <= 0 {
		return []domain.Hit{}, nil
	}

	req := &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(query...),
		Using:          qdrant.PtrOf(field.String()),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if ef > 0 {
		req.Params = &qdrant.SearchParams{HnswEf: qdrant.PtrOf(ef)}
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, unavailable("qdrant search failed", err)
	}

	hits := make([]domain.Hit, 0, len(points))
	for _, point := range points {
		hits = append(hits, toHit(point))
	}
	return hits, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) exists(ctx context.Context, name string) error {
	ok, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return unavailable("checking collection", err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}
	return nil
}

// schema reconstructs the collection schema from the server's vector params.
func (s *Store) schema(ctx context.Context, name string) (domain.CollectionSchema, error) {
	if err := s.exists(ctx, name); err != nil {
		return domain.CollectionSchema{}, err
	}
	dims, err := s.dimensions(ctx, name)
	if err != nil {
		return domain.CollectionSchema{}, err
	}
	return domain.NewCollectionSchema(name, dims[domain.FieldContent]), nil
}

func (s *Store) dimensions(ctx context.Context, name string) (map[domain.VectorField]int, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, unavailable("reading collection info", err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParamsMap().GetMap()
	dims := make(map[domain.VectorField]int, len(params))
	for key, p := range params {
		dims[domain.VectorField(key)] = int(p.GetSize())
	}
	return dims, nil
}

func toHit(point *qdrant.ScoredPoint) domain.Hit {
	hit := domain.Hit{Similarity: float64(point.GetScore())}
	if id := point.GetId(); id != nil {
		hit.ID = int64(id.GetNum())
	}
	if v, ok := point.GetPayload()[payloadText]; ok {
		hit.Text = v.GetStringValue()
	}
	return hit
}

func distance(m domain.Metric) qdrant.Distance {
	if m == domain.MetricCosine {
		return qdrant.Distance_Cosine
	}
	return qdrant.Distance_Dot
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrVectorStoreUnavailable, op, err)
}
