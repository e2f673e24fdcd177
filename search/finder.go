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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
)

// FindCallback receives the outcome of FindProduct. On failure matches is nil
// and err is the index error exactly as the index returned it.
type FindCallback func(err error, matches []*core.Document)

// Finder matches utterances against a search index.
type Finder struct {
	index          Index
	indexName      string
	scopes         *core.ScopeTable
	pool           *ants.Pool
	poolSize       int
	releaseTimeout time.Duration
	logger         *slog.Logger

	// overflow tracks callbacks started outside the pool while it was saturated.
	mu       sync.Mutex
	closed   bool
	overflow sync.WaitGroup
}

// Option configures a Finder.
type Option func(*Finder) error

// WithPoolSize sets the number of pooled workers running FindProduct.
// Work submitted while every worker is busy runs on its own goroutine.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(f *Finder) error {
		f.poolSize = max(size, 1)
		return nil
	}
}

// WithReleaseTimeout bounds how long Close waits for in-flight callbacks.
// Default is 5 seconds.
func WithReleaseTimeout(d time.Duration) Option {
	return func(f *Finder) error {
		f.releaseTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFinder creates a finder querying indexName on index. Entity scopes map
// recognized entity types to the index fields they restrict; a nil table
// disables scoping.
func NewFinder(index Index, indexName string, scopes *core.ScopeTable, opts ...Option) (*Finder, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if indexName == "" {
		return nil, ErrIndexNameRequired
	}

	f := &Finder{
		index:          index,
		indexName:      indexName,
		scopes:         scopes,
		poolSize:       max(runtime.NumCPU(), 1),
		releaseTimeout: 5 * time.Second,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	pool, err := newPool(f.poolSize, f.logger)
	if err != nil {
		return nil, err
	}
	f.pool = pool

	return f, nil
}

// Find builds a query from the utterance and entities, searches the index,
// and ranks the hits against the utterance. Index errors are returned unchanged.
func (f *Finder) Find(ctx context.Context, speech ai.SpeechResult, entities ai.EntityResult) ([]*core.Document, error) {
	return f.FindWithMonitor(ctx, speech, entities, nil)
}

// FindWithMonitor is Find with monitoring.
// The monitor receives callbacks at each stage of the find process.
func (f *Finder) FindWithMonitor(ctx context.Context, speech ai.SpeechResult, entities ai.EntityResult, monitor FindMonitor) ([]*core.Document, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	text := speech.Header.Name
	query := BuildQuery(text, entities.Entities, f.scopes)
	monitor.Start(text, query)

	resp, err := f.index.Search(ctx, f.indexName, query)
	if err != nil {
		f.logger.Error("index search failed", "index", f.indexName, "search", query.Search, "err", err)
		monitor.Failed(err)
		return nil, err
	}

	var hits []*core.Document
	if resp != nil {
		hits = resp.Value
	}
	monitor.AfterSearch(hits)

	ranked := RankProducts(text, hits)
	f.logger.Debug("ranked products",
		"search", query.Search,
		"hits", len(hits),
		"matches", len(ranked))
	monitor.Finish(ranked)
	return ranked, nil
}

// FindProduct runs Find on a worker and hands the outcome to callback from
// that worker, never within the caller's call stack, whether or not the
// index answered synchronously. FindProduct never waits for a free worker,
// so callbacks may call it again. An error is returned only when the finder
// is closed, in which case callback is never called.
func (f *Finder) FindProduct(ctx context.Context, speech ai.SpeechResult, entities ai.EntityResult, callback FindCallback) error {
	if callback == nil {
		return ErrCallbackRequired
	}

	task := func() {
		matches, err := f.Find(ctx, speech, entities)
		if err != nil {
			callback(err, nil)
			return
		}
		callback(nil, matches)
	}

	err := f.pool.Submit(task)
	if errors.Is(err, ants.ErrPoolOverload) {
		return f.runOverflow(task)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFinderClosed, err)
	}
	return nil
}

// runOverflow runs task on a dedicated goroutine that Close waits for.
func (f *Finder) runOverflow(task func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFinderClosed
	}

	f.logger.Debug("find pool saturated, running on overflow goroutine", "pool_size", f.poolSize)
	f.overflow.Add(1)
	go func() {
		defer f.overflow.Done()
		defer func() {
			if p := recover(); p != nil {
				f.logger.Error("find callback panicked", "panic", p)
			}
		}()
		task()
	}()
	return nil
}

// Close stops accepting work and waits for in-flight callbacks.
func (f *Finder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	deadline := time.Now().Add(f.releaseTimeout)
	err := f.pool.ReleaseTimeout(f.releaseTimeout)

	done := make(chan struct{})
	go func() {
		f.overflow.Wait()
		close(done)
	}()
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		select {
		case <-done:
		default:
			if err == nil {
				err = ErrReleaseTimeout
			}
		}
	}
	return err
}

func newPool(size int, logger *slog.Logger) (*ants.Pool, error) {
	return ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithLogger(poolLogger{logger}),
		ants.WithPanicHandler(func(p any) {
			logger.Error("find callback panicked", "panic", p)
		}),
	)
}

// poolLogger adapts slog to the ants logger interface.
type poolLogger struct {
	logger *slog.Logger
}

func (l poolLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "finder-pool")
}
