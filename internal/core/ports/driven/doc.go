// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Maps text to a fixed-length vector (Ollama, OpenAI, hash)
//   - VectorStore: Collection schema, index, insert and search (SQLite, memory, Qdrant)
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Reuses vectors for repeated text (memory, Redis)
//   - SectionStore: Persists segmented sections between segmentation and insertion
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
