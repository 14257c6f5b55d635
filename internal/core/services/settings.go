package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
	keyEmbedRate     = "embedding.requests_per_second"

	keyStoreBackend    = "store.backend"
	keyStoreCollection = "store.collection"
	keyStoreDataDir    = "store.data_dir"
	keyStoreHost       = "store.host"
	keyStorePort       = "store.port"
	keyStoreAPIKey     = "store.api_key"
	keyStoreTLS        = "store.use_tls"

	keyCacheBackend  = "cache.backend"
	keyCacheAddr     = "cache.addr"
	keyCachePassword = "cache.password"
	keyCacheDB       = "cache.db"
	keyCacheTTL      = "cache.ttl"

	keyIndexMetric         = "index.metric"
	keyIndexM              = "index.m"
	keyIndexEfConstruction = "index.ef_construction"
	keyIndexEfSearch       = "index.ef_search"

	keyQueryField     = "query.field"
	keyQueryLimit     = "query.limit"
	keyQueryThreshold = "query.threshold"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	ttl, err := s.getDuration(keyCacheTTL, defaults.Cache.TTL)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.getString(keyEmbedBaseURL, s.defaultBaseURL(provider, defaults)),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
		},
		Store: domain.StoreSettings{
			Backend:    s.getStoreBackend(defaults.Store.Backend),
			Collection: s.getString(keyStoreCollection, defaults.Store.Collection),
			DataDir:    s.configStore.GetString(keyStoreDataDir), // empty means the adapter default
			Host:       s.getString(keyStoreHost, defaults.Store.Host),
			Port:       s.getInt(keyStorePort, defaults.Store.Port),
			APIKey:     s.configStore.GetString(keyStoreAPIKey),
			UseTLS:     s.getBool(keyStoreTLS, defaults.Store.UseTLS),
		},
		Cache: domain.CacheSettings{
			Backend:  s.getCacheBackend(defaults.Cache.Backend),
			Addr:     s.configStore.GetString(keyCacheAddr),
			Password: s.configStore.GetString(keyCachePassword),
			DB:       s.configStore.GetInt(keyCacheDB),
			TTL:      ttl,
		},
		Index: domain.IndexParams{
			Metric:         s.getMetric(defaults.Index.Metric),
			M:              s.getInt(keyIndexM, defaults.Index.M),
			EfConstruction: s.getInt(keyIndexEfConstruction, defaults.Index.EfConstruction),
			EfSearch:       s.getInt(keyIndexEfSearch, defaults.Index.EfSearch),
		},
		Query: domain.QueryOptions{
			Field:     s.getField(defaults.Query.Field),
			Limit:     s.getInt(keyQueryLimit, defaults.Query.Limit),
			Threshold: s.getFloat(keyQueryThreshold, defaults.Query.Threshold),
		},
	}

	return settings, nil
}

// Save persists settings. Empty secrets are not written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRate, settings.Embedding.RequestsPerSecond},
		{keyStoreBackend, settings.Store.Backend.String()},
		{keyStoreCollection, settings.Store.Collection},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyStoreHost, settings.Store.Host},
		{keyStorePort, settings.Store.Port},
		{keyStoreTLS, settings.Store.UseTLS},
		{keyCacheBackend, settings.Cache.Backend.String()},
		{keyCacheAddr, settings.Cache.Addr},
		{keyCacheDB, settings.Cache.DB},
		{keyCacheTTL, settings.Cache.TTL.String()},
		{keyIndexMetric, string(settings.Index.Metric)},
		{keyIndexM, settings.Index.M},
		{keyIndexEfConstruction, settings.Index.EfConstruction},
		{keyIndexEfSearch, settings.Index.EfSearch},
		{keyQueryField, settings.Query.Field.String()},
		{keyQueryLimit, settings.Query.Limit},
		{keyQueryThreshold, settings.Query.Threshold},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyStoreAPIKey:   settings.Store.APIKey,
		keyCachePassword: settings.Cache.Password,
	}
	for key, secret := range secrets {
		if secret == "" {
			continue
		}
		if err := s.configStore.Set(key, secret); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Validate checks the stored settings can build a working pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrInvalidInput, settings.Embedding.Provider))
	}
	if settings.Store.Backend.IsNetwork() && settings.Store.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %s store requires a host", domain.ErrInvalidInput, settings.Store.Backend))
	}
	if settings.Cache.Backend == domain.CacheBackendRedis && settings.Cache.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: redis cache requires an address", domain.ErrInvalidInput))
	}
	if err := settings.Index.Validate(); err != nil {
		errs = append(errs, err)
	}
	if settings.Query.Threshold < -1 || settings.Query.Threshold > 1 {
		errs = append(errs, fmt.Errorf("%w: query threshold %.2f outside [-1, 1]",
			domain.ErrInvalidInput, settings.Query.Threshold))
	}

	return errors.Join(errs...)
}

func (s *SettingsService) defaultBaseURL(provider domain.AIProvider, defaults domain.Settings) string {
	if provider == domain.AIProviderOllama {
		return defaults.Embedding.BaseURL
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getMetric(defaultVal domain.Metric) domain.Metric {
	metric := domain.Metric(s.configStore.GetString(keyIndexMetric))
	if !metric.IsValid() {
		return defaultVal
	}
	return metric
}

func (s *SettingsService) getField(defaultVal domain.VectorField) domain.VectorField {
	field := domain.VectorField(s.configStore.GetString(keyQueryField))
	if !field.IsValid() {
		return defaultVal
	}
	return field
}
