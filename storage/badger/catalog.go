package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// newCatalogRepository returns the concrete repository for use within the package.
func newCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &CatalogRepository{
		backend: backend,
	}, nil
}

// NewCatalogRepository creates a catalog repository on the backend.
func NewCatalogRepository(backend *Backend) (storage.CatalogRepository, error) {
	return newCatalogRepository(backend)
}

// Close releases resources. The backend is owned by the caller.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddProducts stores products, replacing existing ones with the same key.
func (r *CatalogRepository) AddProducts(ctx context.Context, indexName string, products ...*core.Product) ([]*core.Product, error) {
	if err := validateIndexName(indexName); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, product := range products {
			if err := core.ValidateProduct(product); err != nil {
				return err
			}
			key := makeProductKey(indexName, product.Id())

			old, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				product.InsertedAt = old.InsertedAt
			} else {
				product.InsertedAt = now
			}
			product.UpdatedAt = now
			product.Document.Key = product.Key

			if err := tx.Set(key, storage.MarshalProduct(product)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProducts replaces existing products.
func (r *CatalogRepository) UpdateProducts(ctx context.Context, indexName string, products ...*core.Product) ([]*core.Product, error) {
	if err := validateIndexName(indexName); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, product := range products {
			if err := core.ValidateProduct(product); err != nil {
				return err
			}
			key := makeProductKey(indexName, product.Id())

			old, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: product %q", storage.ErrNotFound, product.Key)
			}

			product.InsertedAt = old.InsertedAt
			product.UpdatedAt = now
			product.Document.Key = product.Key

			if err := tx.Set(key, storage.MarshalProduct(product)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// DeleteProducts removes products by key.
func (r *CatalogRepository) DeleteProducts(ctx context.Context, indexName string, keys ...string) error {
	if err := validateIndexName(indexName); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range keys {
			key := makeProductKey(indexName, core.IDFromContent(k))
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: product %q", storage.ErrNotFound, k)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetProduct retrieves a single product by key.
func (r *CatalogRepository) GetProduct(ctx context.Context, indexName, key string) (*core.Product, error) {
	if err := validateIndexName(indexName); err != nil {
		return nil, err
	}

	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readProduct(tx, makeProductKey(indexName, core.IDFromContent(key)))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: product %q", storage.ErrNotFound, key)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProducts retrieves multiple products by key.
func (r *CatalogRepository) GetProducts(ctx context.Context, indexName string, keys ...string) ([]*core.Product, error) {
	if err := validateIndexName(indexName); err != nil {
		return nil, err
	}

	var result []*core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range keys {
			product, err := readProduct(tx, makeProductKey(indexName, core.IDFromContent(k)))
			if err != nil {
				return err
			}
			if product != nil {
				result = append(result, product)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetSkus returns the SKU set of a product.
func (r *CatalogRepository) GetSkus(ctx context.Context, indexName, key string) ([]core.ProductSku, error) {
	product, err := r.GetProduct(ctx, indexName, key)
	if err != nil {
		return nil, err
	}
	return product.Skus, nil
}

// AllProducts returns every product in the index.
func (r *CatalogRepository) AllProducts(ctx context.Context, indexName string) ([]*core.Product, error) {
	var results []*core.Product
	err := r.forEachProduct(ctx, indexName, func(p *core.Product) error {
		results = append(results, p)
		return nil
	})
	return results, err
}

// CountProducts returns the number of products in the index.
func (r *CatalogRepository) CountProducts(ctx context.Context, indexName string) (int, error) {
	if err := validateIndexName(indexName); err != nil {
		return 0, err
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeProductIndexPrefix(indexName)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// forEachProduct decodes every product of the index in key order.
// Iteration stops early when ctx is cancelled.
func (r *CatalogRepository) forEachProduct(ctx context.Context, indexName string, fn func(*core.Product) error) error {
	if err := validateIndexName(indexName); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeProductIndexPrefix(indexName), func(_, val []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			product, err := storage.UnmarshalProduct(val)
			if err != nil {
				return err
			}
			return fn(product)
		})
	}, false)
}

// readProduct reads a product from the transaction.
// A missing key yields a nil product and no error.
func readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var err error
		product, err = storage.UnmarshalProduct(val)
		return err
	})
	return product, err
}
