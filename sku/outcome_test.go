package sku

import (
	"testing"

	"github.com/poiesic/productfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrow_AsksNextAttribute(t *testing.T) {
	sel := &core.SkuSelection{
		Skus: []core.ProductSku{
			sku("1", "color", "red", "size", "S"),
			sku("2", "color", "red", "size", "M"),
			sku("3", "color", "blue", "size", "M"),
		},
		Entities: []core.Entity{entity("color", "red")},
	}

	out := testNarrower().Narrow(sel)

	assert.Equal(t, []string{"1", "2"}, numbers(out.Skus))
	require.NotNil(t, out.Next)
	assert.Equal(t, "size", out.Next.Name)
	assert.Equal(t, "size", sel.Attribute)
	assert.Nil(t, out.Resolved)
	assert.False(t, out.Complete())
}

func TestNarrow_Resolved(t *testing.T) {
	sel := &core.SkuSelection{
		Skus: []core.ProductSku{
			sku("1", "color", "red", "size", "S"),
			sku("2", "color", "red", "size", "M"),
		},
		Selected:  map[string]string{"size": "M"},
		Attribute: "size",
	}

	out := testNarrower().Narrow(sel)

	require.NotNil(t, out.Resolved)
	assert.Equal(t, "2", out.Resolved.ProductNumber)
	assert.Nil(t, out.Next)
	assert.Empty(t, sel.Attribute)
	assert.True(t, out.Complete())
}

func TestNarrow_NoMatch(t *testing.T) {
	sel := &core.SkuSelection{
		Skus:     []core.ProductSku{sku("1", "color", "red")},
		Selected: map[string]string{"color": "purple"},
	}

	out := testNarrower().Narrow(sel)

	assert.Empty(t, out.Skus)
	assert.Nil(t, out.Resolved)
	assert.False(t, out.Complete())
}
