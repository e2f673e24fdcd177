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


package badger

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/search"
)

// Index implements search.Index by evaluating queries over the stored catalog.
// Every search scans all products of the queried index.
type Index struct {
	catalog *CatalogRepository
	logger  *slog.Logger
}

var _ search.Index = (*Index)(nil)

// NewIndex creates a search index over the catalog stored in backend.
//
// Returns search.Index interface to enforce abstraction.
func NewIndex(backend *Backend) (search.Index, error) {
	catalog, err := newCatalogRepository(backend)
	if err != nil {
		return nil, err
	}
	return &Index{
		catalog: catalog,
		logger:  slog.Default().With("component", "catalog-index"),
	}, nil
}

// hit is a matching document and its clause score.
type hit struct {
	doc   *core.Document
	score int
}

// Search evaluates the query against every product of indexName.
// Hits are ordered by score, best first, then by key.
func (ix *Index) Search(ctx context.Context, indexName string, query core.QueryOptions) (*search.Response, error) {
	clauses := parseQuery(query)
	fields, err := parseSelect(query.Select)
	if err != nil {
		return nil, err
	}

	var hits []hit
	err = ix.catalog.forEachProduct(ctx, indexName, func(p *core.Product) error {
		if s, ok := score(clauses, &p.Document); ok {
			hits = append(hits, hit{doc: &p.Document, score: s})
		}
		return nil
	})
	if err != nil {
		ix.logger.Error("catalog scan failed", "index", indexName, "err", err)
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.Key < hits[j].doc.Key
	})
	if query.Top > 0 && len(hits) > query.Top {
		hits = hits[:query.Top]
	}

	resp := &search.Response{Value: make([]*core.Document, 0, len(hits))}
	for _, h := range hits {
		resp.Value = append(resp.Value, project(h.doc, fields))
	}
	ix.logger.Debug("catalog search", "index", indexName, "search", query.Search, "hits", len(resp.Value))
	return resp, nil
}
