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

import "github.com/poiesic/productfinder/core"

// Outcome is the result of one narrowing step.
type Outcome struct {
	// Skus are the candidates left after narrowing.
	Skus []core.ProductSku `json:"skus"`
	// Next is the attribute to ask about, nil when nothing is ambiguous.
	Next *core.AttributeChoice `json:"next,omitempty"`
	// Resolved is the single remaining SKU, nil unless exactly one remains.
	Resolved *core.ProductSku `json:"resolved,omitempty"`
}

// Complete reports whether the selection is fully determined.
func (o Outcome) Complete() bool {
	return o.Next == nil && len(o.Skus) > 0
}

// Narrow applies SkuChoices to sel and determines what to ask next.
func (n *Narrower) Narrow(sel *core.SkuSelection) Outcome {
	skus := n.SkuChoices(sel)
	out := Outcome{Skus: skus}

	if next, ok := n.NextSkuAttribute(skus); ok {
		out.Next = &next
		if sel != nil {
			sel.Attribute = next.Name
		}
	} else if sel != nil {
		sel.Attribute = ""
	}

	if len(skus) == 1 {
		resolved := skus[0]
		out.Resolved = &resolved
	}
	return out
}
