// Package app assembles the section retrieval pipeline from settings.
// Callers get one App holding every core service and close it when done.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/cache"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/sections/jsonfile"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/core/services"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// sectionsDirName is the sections directory under a configured data dir.
const sectionsDirName = "sections"

// App holds the wired services and the adapters they own.
type App struct {
	Settings domain.Settings

	Segmenter   *services.SegmentService
	Embedder    *services.Embedder
	Collections *services.CollectionService
	Retriever   *services.RetrievalService
	Ingest      *services.IngestService
	Corpus      *services.CorpusService
	Sections    *jsonfile.Store

	model driven.EmbeddingService
	cache driven.EmbeddingCache
	store driven.VectorStore
}

// Load reads settings from configStore, validates them and builds the App.
func Load(ctx context.Context, configStore driven.ConfigStore) (*App, error) {
	settingsService := services.NewSettingsService(configStore)
	if err := settingsService.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", configStore.Path(), err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	return New(ctx, settings)
}

// New connects every adapter named by settings and wires the services.
// Adapters opened before a failure are closed again.
func New(ctx context.Context, settings *domain.Settings) (_ *App, err error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	logger.Section("Startup")

	a := &App{Settings: *settings}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.model, err = ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}
	logger.Info("Embedding model %s (%d dimensions)", a.model.ModelName(), a.model.Dimensions())

	a.cache, err = cache.Open(ctx, settings.Cache)
	if err != nil {
		return nil, err
	}

	a.store, err = vectorstore.Open(ctx, settings.Store, settings.Index.Metric)
	if err != nil {
		return nil, err
	}
	logger.Info("Vector store %s", settings.Store.Backend.Description())

	sectionsDir := ""
	if settings.Store.DataDir != "" {
		sectionsDir = filepath.Join(settings.Store.DataDir, sectionsDirName)
	}
	a.Sections, err = jsonfile.NewStore(sectionsDir)
	if err != nil {
		return nil, err
	}

	a.Segmenter = services.NewSegmentService()
	a.Embedder = services.NewEmbedder(a.model, a.cache)
	a.Collections = services.NewCollectionService(a.store, a.Embedder, settings.Store.Collection, settings.Index)
	a.Retriever = services.NewRetrievalService(a.Collections, a.Embedder)
	a.Ingest = services.NewIngestService(a.Segmenter, a.Collections, a.Sections)
	a.Corpus = services.NewCorpusService(a.Retriever, services.WithSectionOptions(settings.Query))

	return a, nil
}

// MCPServer exposes the services as MCP tools and resources.
func (a *App) MCPServer() (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Retrieval: a.Retriever,
		Segment:   a.Segmenter,
		Ingest:    a.Ingest,
		Corpus:    a.Corpus,
		Sections:  a.Sections,
	})
}

// Watcher ingests markdown files written to dir.
func (a *App) Watcher(dir string, opts ...watch.Option) *watch.Watcher {
	return watch.New(dir, a.Ingest, opts...)
}

// Close releases the store, cache and model. Nil adapters are skipped.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.model != nil {
		errs = append(errs, a.model.Close())
	}
	return errors.Join(errs...)
}
