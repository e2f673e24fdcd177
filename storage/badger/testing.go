package badger

import "github.com/poiesic/productfinder/storage"

// NewMemoryCatalog creates an in-memory catalog repository for testing.
// Caller must close both the repository and the backend when done.
func NewMemoryCatalog() (storage.CatalogRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return catalog, backend, nil
}
