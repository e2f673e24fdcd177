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
	"sort"

	"github.com/poiesic/productfinder/core"
)

// RankProducts scores each result by how far its name is from the query text
// and returns the results tied for the best score, in input order.
//
// The score is the number of distinct tokens found in only one of the name
// and the query, divided by the name's token count. Lower is closer; an
// exact token match scores 0. Score is written to each input document.
func RankProducts(queryText string, results []*core.Document) []*core.Document {
	if len(results) == 0 {
		return []*core.Document{}
	}

	queryTokens := tokenize(queryText)
	ranked := make([]*core.Document, len(results))
	copy(ranked, results)

	for _, doc := range ranked {
		nameTokens := tokenize(doc.Name)
		doc.Score = float64(symmetricDifference(nameTokens, queryTokens)) / float64(len(nameTokens))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})

	best := 1
	for best < len(ranked) && ranked[best].Score == ranked[0].Score {
		best++
	}
	return ranked[:best]
}
