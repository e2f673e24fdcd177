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


package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/productfinder/core"
)

// catalogEntry is the JSON form of one catalog product.
type catalogEntry struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Colors      []string          `json:"colors,omitempty"`
	Sizes       []string          `json:"sizes,omitempty"`
	Sex         string            `json:"sex,omitempty"`
	Products    []string          `json:"products,omitempty"`
	Description string            `json:"description,omitempty"`
	Skus        []core.ProductSku `json:"skus,omitempty"`
}

// ReadCatalog decodes a JSON catalog. When an entry lists no product
// numbers, they are taken from its SKUs.
func ReadCatalog(r io.Reader) ([]*core.Product, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	products := make([]*core.Product, 0, len(entries))
	for _, e := range entries {
		numbers := e.Products
		if len(numbers) == 0 {
			for _, s := range e.Skus {
				numbers = append(numbers, s.ProductNumber)
			}
		}
		products = append(products, &core.Product{
			Key: e.Key,
			Document: core.Document{
				Key:         e.Key,
				Name:        e.Name,
				Category:    e.Category,
				Colors:      e.Colors,
				Sizes:       e.Sizes,
				Sex:         e.Sex,
				Products:    numbers,
				Description: e.Description,
			},
			Skus: e.Skus,
		})
	}
	return products, nil
}

// ReadCatalogFile decodes the JSON catalog stored at path.
func ReadCatalogFile(path string) ([]*core.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}
