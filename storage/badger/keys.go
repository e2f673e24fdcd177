package badger

import (
	"fmt"
	"strings"

	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/storage"
)

// Key prefixes for different data types
const (
	productPrefix = "catprod"
	keySeparator  = ":"
)

// makeProductKey generates a key for a product by index and ID.
// Format: prefix:index:id
func makeProductKey(indexName string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", productPrefix, indexName, id))
}

// makeProductIndexPrefix generates the prefix shared by all products of an index.
func makeProductIndexPrefix(indexName string) []byte {
	return []byte(productPrefix + keySeparator + indexName + keySeparator)
}

// validateIndexName rejects names that would make index prefixes overlap.
func validateIndexName(indexName string) error {
	if indexName == "" || strings.Contains(indexName, keySeparator) {
		return fmt.Errorf("%w: %q", storage.ErrInvalidIndexName, indexName)
	}
	return nil
}
