package driven

import "context"

// EmbeddingCache stores vectors keyed by model and text.
// A miss is reported with ok=false and a nil error.
type EmbeddingCache interface {
	// Get returns the cached vector for text under model.
	Get(ctx context.Context, model, text string) (vec []float32, ok bool, err error)

	// Put stores the vector for text under model.
	Put(ctx context.Context, model, text string, vec []float32) error

	// Close releases resources.
	Close() error
}
