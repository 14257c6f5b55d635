// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is: SegmentService splits a document, Embedder turns each
// section into three vectors, CollectionService stores them, and
// RetrievalService answers thresholded queries. IngestService and
// CorpusService compose those steps.
//
// Services are pure Go with no CGO or external dependencies.
package services
