package domain

import "fmt"

// Collection defaults.
const (
	// DefaultCollectionName is the collection used when none is configured.
	DefaultCollectionName = "md_embeddings"

	// DefaultDimension is the output size of the default embedding model.
	DefaultDimension = 1024

	// DefaultTextMaxBytes bounds the stored text payload.
	DefaultTextMaxBytes = 65535
)

// VectorField names one of the three vector fields of a collection.
type VectorField string

// Vector fields stored for every row.
const (
	FieldMainTitle    VectorField = "main_title_embedding"
	FieldSectionTitle VectorField = "section_title_embedding"
	FieldContent      VectorField = "content_embedding"
)

// AllVectorFields returns the vector fields in schema order.
func AllVectorFields() []VectorField {
	return []VectorField{FieldMainTitle, FieldSectionTitle, FieldContent}
}

// IsValid returns true if the field is one of the schema's vector fields.
func (f VectorField) IsValid() bool {
	switch f {
	case FieldMainTitle, FieldSectionTitle, FieldContent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f VectorField) String() string {
	return string(f)
}

// Metric is the similarity function used by an index.
type Metric string

// Supported metrics.
const (
	// MetricInnerProduct scores by dot product. Higher is more similar.
	MetricInnerProduct Metric = "IP"

	// MetricCosine scores by cosine similarity. Higher is more similar.
	MetricCosine Metric = "COSINE"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	return m == MetricInnerProduct || m == MetricCosine
}

// IndexParams configures the graph-based approximate nearest-neighbour index.
type IndexParams struct {
	// Metric is the similarity function.
	Metric Metric

	// M is the number of neighbours kept per node.
	M int

	// EfConstruction is the candidate list size while building.
	EfConstruction int

	// EfSearch is the candidate list size while searching.
	EfSearch int
}

// DefaultIndexParams returns inner product with M=16, efConstruction=200 and ef=128.
func DefaultIndexParams() IndexParams {
	return IndexParams{
		Metric:         MetricInnerProduct,
		M:              16,
		EfConstruction: 200,
		EfSearch:       128,
	}
}

// Validate reports whether the parameters can build an index.
func (p IndexParams) Validate() error {
	if !p.Metric.IsValid() {
		return fmt.Errorf("%w: metric %q", ErrInvalidInput, p.Metric)
	}
	if p.M < 2 {
		return fmt.Errorf("%w: M must be at least 2, got %d", ErrInvalidInput, p.M)
	}
	if p.EfConstruction < 1 || p.EfSearch < 1 {
		return fmt.Errorf("%w: ef values must be positive", ErrInvalidInput)
	}
	return nil
}

// CollectionSchema describes a collection: an auto-incrementing integer id,
// three vector fields of the same dimension and a bounded text field.
type CollectionSchema struct {
	// Name identifies the collection.
	Name string

	// Dimension is the length of every vector field.
	Dimension int

	// TextMaxBytes bounds the text payload.
	TextMaxBytes int

	// Description is stored alongside the schema.
	Description string
}

// NewCollectionSchema returns the standard schema for the given name and dimension.
func NewCollectionSchema(name string, dimension int) CollectionSchema {
	return CollectionSchema{
		Name:         name,
		Dimension:    dimension,
		TextMaxBytes: DefaultTextMaxBytes,
		Description:  "Embeddings collection for markdown files",
	}
}

// Validate reports whether the schema can be created.
func (s CollectionSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidInput, s.Dimension)
	}
	if s.TextMaxBytes <= 0 {
		return fmt.Errorf("%w: text max bytes must be positive", ErrInvalidInput)
	}
	return nil
}

// Compatible reports whether an existing schema can be reused for other.
// Descriptions are ignored.
func (s CollectionSchema) Compatible(other CollectionSchema) bool {
	return s.Name == other.Name &&
		s.Dimension == other.Dimension &&
		s.TextMaxBytes == other.TextMaxBytes
}

// Collection is a handle to a created or reused collection.
type Collection struct {
	// Schema is the schema the collection was created with.
	Schema CollectionSchema

	// Created is true when this call created the collection.
	Created bool
}

// Name returns the collection name.
func (c Collection) Name() string {
	return c.Schema.Name
}

// Row is one stored record: three vectors and the text payload.
type Row struct {
	// ID is assigned by the store on insert.
	ID int64

	// Vectors holds one vector per field. All three must be present.
	Vectors map[VectorField][]float32

	// Text is the section content shown on retrieval.
	Text string
}

// Validate checks a row against the schema without touching a store.
func (r Row) Validate(schema CollectionSchema) error {
	for _, field := range AllVectorFields() {
		vec, ok := r.Vectors[field]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidInput, field)
		}
		if len(vec) != schema.Dimension {
			return fmt.Errorf("%w: %s has %d values, collection %q expects %d",
				ErrDimensionMismatch, field, len(vec), schema.Name, schema.Dimension)
		}
	}
	if len(r.Text) > schema.TextMaxBytes {
		return fmt.Errorf("%w: text is %d bytes, limit is %d", ErrInvalidInput, len(r.Text), schema.TextMaxBytes)
	}
	return nil
}

// Hit is one ranked match from a vector field search.
type Hit struct {
	// ID is the matched row.
	ID int64

	// Text is the matched row's text payload.
	Text string

	// Similarity is the metric score. Higher is more similar.
	Similarity float64
}
