package ingestion

import (
	"strings"
	"testing"

	"github.com/poiesic/productfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCatalog(t *testing.T) {
	products, err := ReadCatalog(strings.NewReader(`[
		{
			"key": "oxford",
			"name": "Classic Oxford Shirt",
			"category": "shirts",
			"colors": ["Red", "Blue"],
			"sizes": ["S", "M"],
			"sex": "men",
			"description": "Cotton oxford",
			"skus": [
				{"productNumber": "OX-1", "size": "S", "color": "Red"},
				{"productNumber": "OX-2", "size": "M", "color": "Blue"}
			]
		},
		{"key": "tee", "name": "Tee", "products": ["T-9"]}
	]`))
	require.NoError(t, err)
	require.Len(t, products, 2)

	oxford := products[0]
	assert.Equal(t, "oxford", oxford.Key)
	assert.Equal(t, "oxford", oxford.Document.Key)
	assert.Equal(t, "Classic Oxford Shirt", oxford.Document.Name)
	assert.Equal(t, []string{"OX-1", "OX-2"}, oxford.Document.Products)
	require.Len(t, oxford.Skus, 2)
	assert.Equal(t, []core.Attribute{{Name: "size", Value: "S"}, {Name: "color", Value: "Red"}}, oxford.Skus[0].Attributes)

	assert.Equal(t, []string{"T-9"}, products[1].Document.Products)
	assert.Empty(t, products[1].Skus)
}

func TestReadCatalog_Invalid(t *testing.T) {
	for _, in := range []string{`{`, `{"key": "x"}`, `[{"skus": [{"productNumber": 7}]}]`} {
		_, err := ReadCatalog(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrInvalidCatalog, in)
	}
}
