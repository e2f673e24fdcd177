package search

import (
	"context"

	"github.com/poiesic/productfinder/core"
)

// Index evaluates structured queries against a named document index.
type Index interface {
	// Search runs the query against indexName and returns the raw hits.
	Search(ctx context.Context, indexName string, query core.QueryOptions) (*Response, error)
}

// Response is the raw result of an index search.
type Response struct {
	Value []*core.Document `json:"value"`
}
