// Package hnsw is an approximate nearest-neighbour index over float32 vectors
// backed by github.com/coder/hnsw.
//
// Similarity is "higher is better": the inner product, or the cosine
// similarity with zero vectors scoring 0. Keys are caller-chosen uint64
// values (row ids).
//
// Rows with byte-identical vectors share one graph node, so a vector
// repeated across many rows (a document title, an empty field) never
// crowds its own copies out of the neighbour lists.
package hnsw
