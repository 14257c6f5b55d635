// Package domain defines the core business entities for sercha-sections.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Section: one titled unit of a segmented markdown document
//   - CollectionSchema: the shape of a vector collection (three vector fields + text)
//   - Row: one stored record with its vectors and text payload
//   - Hit / QueryResult: ranked similarity matches
//   - Corpus: query results grouped for downstream consumers
//   - Settings: provider, store and cache configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
