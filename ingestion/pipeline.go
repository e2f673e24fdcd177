package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/storage"
)

const (
	defaultBatchSize   = 100
	defaultMaxAttempts = 5
	defaultBaseDelay   = 50 * time.Millisecond
)

// Pipeline imports products into a catalog repository.
type Pipeline struct {
	catalog     storage.CatalogRepository
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent validation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many products are written per transaction.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for conflicting writes.
// Defaults are 5 attempts starting at 50ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithProgress reports import progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new import pipeline.
func NewPipeline(catalog storage.CatalogRepository, opts ...Option) (*Pipeline, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	p := &Pipeline{
		catalog:     catalog,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}

	return p, nil
}

// Rejection records a product that failed validation.
type Rejection struct {
	Index int    // position in the imported list
	Key   string // product key, possibly empty
	Err   error
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int
	Rejected []Rejection
	Elapsed  time.Duration
}

// Import validates products and stores the valid ones in the named index.
// Invalid products are skipped and reported in the result. A storage error
// aborts the import; products in earlier batches stay stored.
func (p *Pipeline) Import(ctx context.Context, indexName string, products []*core.Product) (*ImportResult, error) {
	tracker := NewProgressTracker(p.progress, len(products), p.batchSize)
	tracker.Start()

	valid, rejected, err := p.validate(ctx, products)
	if err != nil {
		return nil, err
	}
	for _, r := range rejected {
		p.logger.Warn("skipping invalid product", "index", r.Index, "key", r.Key, "err", r.Err)
	}
	tracker.Increment(len(rejected))

	result := &ImportResult{Rejected: rejected}
	for start := 0; start < len(valid); start += p.batchSize {
		batch := valid[start:min(start+p.batchSize, len(valid))]

		err := RetryWithBackoff(ctx, func() error {
			_, err := p.catalog.AddProducts(ctx, indexName, batch...)
			return err
		}, isConflict, p.maxAttempts, p.baseDelay)
		if err != nil {
			p.logger.Error("error storing products", "index", indexName, "batch_start", start, "err", err)
			result.Elapsed = tracker.Elapsed()
			return result, fmt.Errorf("storing products %d-%d: %w", start, start+len(batch)-1, err)
		}

		result.Imported += len(batch)
		tracker.Increment(len(batch))
	}

	tracker.Finish()
	result.Elapsed = tracker.Elapsed()
	p.logger.Info("import complete",
		"index", indexName,
		"imported", result.Imported,
		"rejected", len(result.Rejected),
		"elapsed", result.Elapsed)
	return result, nil
}

// ImportFile reads a JSON catalog from path and imports it.
func (p *Pipeline) ImportFile(ctx context.Context, indexName, path string) (*ImportResult, error) {
	products, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return p.Import(ctx, indexName, products)
}

// validate checks products concurrently and keeps input order.
func (p *Pipeline) validate(ctx context.Context, products []*core.Product) ([]*core.Product, []Rejection, error) {
	errs := make([]error, len(products))
	var wg sync.WaitGroup

	for i, product := range products {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, nil, err
		}
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			errs[i] = core.ValidateProduct(product)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, nil, err
		}
	}
	wg.Wait()

	valid := make([]*core.Product, 0, len(products))
	var rejected []Rejection
	for i, product := range products {
		if errs[i] != nil {
			key := ""
			if product != nil {
				key = product.Key
			}
			rejected = append(rejected, Rejection{Index: i, Key: key, Err: errs[i]})
			continue
		}
		valid = append(valid, product)
	}
	return valid, rejected, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func isConflict(err error) bool {
	return errors.Is(err, badger.ErrConflict)
}
