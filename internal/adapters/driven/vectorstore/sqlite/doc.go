// Package sqlite provides a durable driven.VectorStore backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Collections, index parameters and rows are persisted in a
// single database file; vectors are stored as little-endian float32 BLOBs.
//
// # Visibility
//
// Inserted rows are written immediately but carry a flushed flag of 0 and are
// not searchable until Flush sets it. Load reads every flushed row of a
// collection and rebuilds its in-process HNSW graphs, so searches are served
// from memory.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-sections/data/vectors.db
package sqlite
