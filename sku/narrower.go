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


package sku

import (
	"log/slog"
	"strings"

	"github.com/poiesic/productfinder/core"
)

// Narrower reduces SKU candidate lists using configured entity scopes.
// It holds no per-selection state and is safe for concurrent use.
type Narrower struct {
	scopes *core.ScopeTable
	logger *slog.Logger
}

// Option configures a Narrower.
type Option func(*Narrower)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrower) {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
	}
}

// NewNarrower creates a narrower. Entities whose scope names a SKU attribute
// constrain that attribute; a nil table means entities never constrain.
func NewNarrower(scopes *core.ScopeTable, opts ...Option) *Narrower {
	n := &Narrower{
		scopes: scopes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SkuChoices narrows sel.Skus and stores the result back in sel.Skus.
//
// Each entity mapped to a SKU attribute filters the candidates to those whose
// attribute equals the entity's canonical value, case-insensitively; a filter
// that would match nothing is skipped. Every selected attribute/value pair is
// then applied as an exact filter, even when it empties the list.
func (n *Narrower) SkuChoices(sel *core.SkuSelection) []core.ProductSku {
	if sel == nil {
		return nil
	}

	skus := sel.Skus
	for _, entity := range sel.Entities {
		mapping, ok := n.scopes.Lookup(entity.Type)
		if !ok || mapping.Sku == "" {
			continue
		}
		canonical, ok := entity.Canonical()
		if !ok {
			continue
		}
		canonical = strings.ToLower(canonical)

		filtered := filter(skus, func(s core.ProductSku) bool {
			v, ok := s.Get(mapping.Sku)
			return ok && strings.ToLower(v) == canonical
		})
		if len(filtered) == 0 {
			n.logger.Debug("skipping entity filter with no matches",
				"product", sel.Product,
				"attribute", mapping.Sku,
				"value", canonical)
			continue
		}
		skus = filtered
	}

	for name, value := range sel.Selected {
		skus = filter(skus, func(s core.ProductSku) bool {
			v, ok := s.Get(name)
			return ok && v == value
		})
	}

	sel.Skus = skus
	return skus
}

// NextSkuAttribute returns the first attribute, in the order attributes are
// first seen across skus, that still has more than one distinct value.
// The product number is never considered. The boolean is false when the
// SKUs agree on every attribute.
func (n *Narrower) NextSkuAttribute(skus []core.ProductSku) (core.AttributeChoice, bool) {
	return NextSkuAttribute(skus)
}

// NextSkuAttribute is the table-independent form of Narrower.NextSkuAttribute.
func NextSkuAttribute(skus []core.ProductSku) (core.AttributeChoice, bool) {
	var order []string
	values := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, s := range skus {
		for _, attr := range s.Attributes {
			if attr.Name == core.ProductNumberKey {
				continue
			}
			set, ok := seen[attr.Name]
			if !ok {
				set = make(map[string]bool)
				seen[attr.Name] = set
				order = append(order, attr.Name)
			}
			if !set[attr.Value] {
				set[attr.Value] = true
				values[attr.Name] = append(values[attr.Name], attr.Value)
			}
		}
	}

	for _, name := range order {
		if len(values[name]) > 1 {
			return core.AttributeChoice{Name: name, Choices: values[name]}, true
		}
	}
	return core.AttributeChoice{}, false
}

func filter(skus []core.ProductSku, keep func(core.ProductSku) bool) []core.ProductSku {
	out := make([]core.ProductSku, 0, len(skus))
	for _, s := range skus {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
