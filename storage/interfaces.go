package storage

import (
	"context"

	"github.com/poiesic/productfinder/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CatalogRepository stores catalog products grouped by index name.
// Product keys are unique within an index.
type CatalogRepository interface {
	Repository

	// AddProducts stores products in the named index, replacing any product
	// with the same key. InsertedAt is kept for replaced products and set
	// for new ones; UpdatedAt is always set.
	// Returns the products with timestamps populated.
	AddProducts(ctx context.Context, indexName string, products ...*core.Product) ([]*core.Product, error)

	// UpdateProducts replaces existing products.
	// Returns ErrNotFound if any product doesn't exist.
	UpdateProducts(ctx context.Context, indexName string, products ...*core.Product) ([]*core.Product, error)

	// DeleteProducts removes products by key.
	// Returns ErrNotFound if any product doesn't exist.
	DeleteProducts(ctx context.Context, indexName string, keys ...string) error

	// GetProduct retrieves a single product by key.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, indexName, key string) (*core.Product, error)

	// GetProducts retrieves multiple products by key.
	// Returns only the products that exist (no error for missing products).
	GetProducts(ctx context.Context, indexName string, keys ...string) ([]*core.Product, error)

	// GetSkus returns the SKU set of a product.
	// Returns ErrNotFound if the product doesn't exist.
	GetSkus(ctx context.Context, indexName, key string) ([]core.ProductSku, error)

	// AllProducts returns every product in the index ordered by storage key.
	AllProducts(ctx context.Context, indexName string) ([]*core.Product, error)

	// CountProducts returns the number of products in the index.
	CountProducts(ctx context.Context, indexName string) (int, error)
}
