package badger

import "errors"

var (
	// ErrBackendRequired is returned when a backend is not provided.
	ErrBackendRequired = errors.New("badger backend required")

	// ErrCatalogRequired is returned when an index is created without a catalog.
	ErrCatalogRequired = errors.New("catalog repository required")
)
