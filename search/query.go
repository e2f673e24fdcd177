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


package search

import (
	"strconv"
	"strings"

	"github.com/poiesic/productfinder/core"
)

const (
	// DefaultSelect is the field projection requested for product candidates.
	DefaultSelect = "name,category,colors,sizes,sex,products,description"

	// DefaultTop caps the number of hits requested from the index.
	DefaultTop = 3
)

// BuildQuery builds a full-syntax query from the utterance and its entities.
// The search text is the utterance, a space, and the scope expression, even
// when the scope expression is empty.
func BuildQuery(text string, entities []core.Entity, scopes *core.ScopeTable) core.QueryOptions {
	return core.QueryOptions{
		QueryType: core.QueryTypeFull,
		Search:    text + " " + EntityScopes(entities, scopes),
		Select:    DefaultSelect,
		Top:       DefaultTop,
	}
}

// EntityScopes renders the scope expression for the entities whose type has
// a configured search scope. Each entity contributes a required fielded
// phrase on its canonical value; unresolved entities contribute nothing.
func EntityScopes(entities []core.Entity, scopes *core.ScopeTable) string {
	fragments := make([]string, 0, len(entities))
	for _, entity := range entities {
		mapping, ok := scopes.Lookup(entity.Type)
		if !ok || mapping.Scope == "" {
			continue
		}
		canonical, ok := entity.Canonical()
		if !ok {
			continue
		}
		fragments = append(fragments, "+"+mapping.Scope+":"+strconv.Quote(canonical))
	}
	return strings.Join(fragments, " ")
}
