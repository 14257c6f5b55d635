package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding model provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API (or a compatible server).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHash is the deterministic offline hashing model.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without a cloud account.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderHash:
		return "Hash (offline, deterministic)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies a vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite persists collections in a local SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory keeps collections in process memory.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendQdrant uses a Qdrant server over gRPC.
	StoreBackendQdrant StoreBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendMemory, StoreBackendQdrant:
		return true
	default:
		return false
	}
}

// IsNetwork returns true if the backend is addressed by host and port.
func (b StoreBackend) IsNetwork() bool {
	return b == StoreBackendQdrant
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendMemory:
		return "Memory (not persisted)"
	case StoreBackendQdrant:
		return "Qdrant (network)"
	default:
		return unknownDescription
	}
}

// CacheBackend identifies an embedding cache implementation.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (Ollama, or an OpenAI-compatible server).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size D. Zero means the model's known size.
	Dimensions int

	// RequestsPerSecond paces calls to remote models. Zero disables pacing.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ResolvedDimensions returns Dimensions, or the known size of Model, or DefaultDimension.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	if d, ok := EmbeddingDimensions()[e.Model]; ok {
		return d
	}
	return DefaultDimension
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// Collection is the collection name.
	Collection string

	// DataDir holds the SQLite database file.
	DataDir string

	// Host and Port address a network store.
	Host string
	Port int

	// APIKey authenticates against a network store.
	APIKey string

	// UseTLS enables TLS for a network store.
	UseTLS bool
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	// Backend selects the cache implementation.
	Backend CacheBackend

	// Addr is the Redis address (host:port).
	Addr string

	// Password authenticates against Redis.
	Password string

	// DB selects the Redis database.
	DB int

	// TTL bounds how long an embedding is cached. Zero keeps entries forever.
	TTL time.Duration
}

// Settings holds all application settings.
type Settings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Store holds vector store settings.
	Store StoreSettings

	// Cache holds embedding cache settings.
	Cache CacheSettings

	// Index holds approximate nearest-neighbour index parameters.
	Index IndexParams

	// Query holds the default retrieval options.
	Query QueryOptions
}

// DefaultSettings returns settings with sensible defaults.
// The default model is served by a local Ollama instance.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Collection: DefaultCollectionName,
			Host:       "localhost",
			Port:       6334,
		},
		Cache: CacheSettings{
			Backend: CacheBackendMemory,
		},
		Index: DefaultIndexParams(),
		Query: DefaultQueryOptions(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHash,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "mxbai-embed-large",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHash:   "fnv-hash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// e5 family
		"e5-large-v2": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
