package hnsw

import "github.com/viant/vec/search"

// Space selects the similarity function.
type Space int

const (
	// SpaceInnerProduct scores by dot product.
	SpaceInnerProduct Space = iota
	// SpaceCosine scores by cosine similarity.
	SpaceCosine
)

// String returns the space name.
func (s Space) String() string {
	switch s {
	case SpaceInnerProduct:
		return "ip"
	case SpaceCosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// Dot returns the inner product of a and b. Lengths must match.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// distance is the graph's ordering function: lower is closer.
// Cosine distance is 1 when either vector is zero.
func (s Space) distance(a, b []float32) float32 {
	if s == SpaceCosine {
		return search.Float32s(a).CosineDistance(b)
	}
	return 1 - Dot(a, b)
}

// similarity converts a distance back to a score.
func (s Space) similarity(a, b []float32) float32 {
	return 1 - s.distance(a, b)
}
