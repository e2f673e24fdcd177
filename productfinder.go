// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package productfinder wires catalog storage, language services, product
// search and SKU narrowing into a single engine.
package productfinder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/ai/mock"
	"github.com/poiesic/productfinder/ai/openai"
	"github.com/poiesic/productfinder/config"
	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/ingestion"
	"github.com/poiesic/productfinder/search"
	"github.com/poiesic/productfinder/sku"
	"github.com/poiesic/productfinder/storage"
	"github.com/poiesic/productfinder/storage/badger"
)

// ErrConfigRequired is returned when NewEngine is called without a config.
var ErrConfigRequired = errors.New("config is required")

type Engine struct {
	cfg      *config.Config
	backend  *badger.Backend
	catalog  storage.CatalogRepository
	index    search.Index
	provider ai.AIProvider
	finder   *search.Finder
	narrower *sku.Narrower
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
}

// WithProvider replaces the provider built from the configuration.
// The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "engine")
	scopes := cfg.ScopeTable()

	backend, err := badger.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return nil, err
	}

	catalog, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := badger.NewIndex(backend)
	if err != nil {
		catalog.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = newProvider(cfg)
		if err != nil {
			catalog.Close()
			backend.Close()
			return nil, err
		}
	}

	finderOpts := []search.Option{search.WithLogger(slog.Default().With("component", "finder"))}
	if cfg.Search.WorkerPoolSize > 0 {
		finderOpts = append(finderOpts, search.WithPoolSize(cfg.Search.WorkerPoolSize))
	}
	finder, err := search.NewFinder(index, cfg.Search.Index, scopes, finderOpts...)
	if err != nil {
		provider.Close()
		catalog.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		backend:  backend,
		catalog:  catalog,
		index:    index,
		provider: provider,
		finder:   finder,
		narrower: sku.NewNarrower(scopes, sku.WithLogger(slog.Default().With("component", "narrower"))),
		logger:   logger,
	}, nil
}

func newProvider(cfg *config.Config) (ai.AIProvider, error) {
	if cfg.AI.Mock {
		return mock.NewMockProvider(), nil
	}
	return openai.NewProvider(cfg.AIProviderConfig())
}

// Close releases the finder, provider, catalog and backend in that order.
// The first error is returned; later resources are still released.
func (e *Engine) Close() error {
	var errs []error

	if err := e.finder.Close(); err != nil {
		e.logger.Error("error closing finder", "err", err)
		errs = append(errs, err)
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := e.catalog.Close(); err != nil {
		e.logger.Error("error closing catalog repository", "err", err)
		errs = append(errs, err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) Catalog() storage.CatalogRepository {
	return e.catalog
}

func (e *Engine) Finder() *search.Finder {
	return e.finder
}

func (e *Engine) Narrower() *sku.Narrower {
	return e.narrower
}

func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// IndexName returns the configured search index name.
func (e *Engine) IndexName() string {
	return e.cfg.Search.Index
}

// NewImportPipeline creates a catalog import pipeline configured from the
// ingestion settings. The caller must Release it.
func (e *Engine) NewImportPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ing := e.cfg.Ingestion
	base := []ingestion.Option{
		ingestion.WithBatchSize(ing.BatchSize),
		ingestion.WithRetry(ing.MaxAttempts, ing.RetryBaseDelay),
		ingestion.WithLogger(slog.Default().With("component", "ingestion")),
	}
	if ing.PoolSize > 0 {
		base = append(base, ingestion.WithPoolSize(ing.PoolSize))
	}
	return ingestion.NewPipeline(e.catalog, append(base, opts...)...)
}

// Understand extracts entities from an utterance.
func (e *Engine) Understand(ctx context.Context, utterance string) (*ai.EntityResult, error) {
	return e.provider.EntityExtractor().ExtractEntities(ctx, utterance)
}

// FindText extracts entities from text and searches the catalog with them.
func (e *Engine) FindText(ctx context.Context, text string) ([]*core.Document, *ai.EntityResult, error) {
	entities, err := e.Understand(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	matches, err := e.finder.Find(ctx, ai.NewSpeechResult(text), *entities)
	if err != nil {
		return nil, entities, err
	}
	return matches, entities, nil
}

// NarrowProduct loads the SKUs of a stored product when sel carries none and
// narrows them.
func (e *Engine) NarrowProduct(ctx context.Context, sel *core.SkuSelection) (sku.Outcome, error) {
	if len(sel.Skus) == 0 {
		skus, err := e.catalog.GetSkus(ctx, e.cfg.Search.Index, sel.Product)
		if err != nil {
			return sku.Outcome{}, err
		}
		sel.Skus = skus
	}
	return e.narrower.Narrow(sel), nil
}
