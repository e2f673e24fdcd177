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


package core

import "fmt"

// ValidateSku validates a ProductSku according to domain rules.
//
// Validation rules:
//   - ProductNumber must not be empty
//   - Attribute names must not be empty or repeat
//   - No attribute may shadow the product number key
//
// Attribute values may be empty.
func ValidateSku(sku *ProductSku) error {
	if sku == nil {
		return fmt.Errorf("%w: sku is nil", ErrInvalidSku)
	}

	if sku.ProductNumber == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSku, ErrEmptyProductNumber)
	}

	seen := make(map[string]struct{}, len(sku.Attributes))
	for _, attr := range sku.Attributes {
		if attr.Name == "" {
			return fmt.Errorf("%w: %w", ErrInvalidSku, ErrEmptyAttributeName)
		}
		if attr.Name == ProductNumberKey {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSku, ErrDuplicateAttribute, attr.Name)
		}
		if _, dup := seen[attr.Name]; dup {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSku, ErrDuplicateAttribute, attr.Name)
		}
		seen[attr.Name] = struct{}{}
	}

	return nil
}

// ValidateProduct validates a Product and every SKU it carries.
//
// Validation rules:
//   - Key must not be empty
//   - Every SKU must be valid
//   - Product numbers must be unique within the product
//
// The document name may be empty; the ranker handles empty names.
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if product.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyProductKey)
	}

	numbers := make(map[string]struct{}, len(product.Skus))
	for i := range product.Skus {
		sku := &product.Skus[i]
		if err := ValidateSku(sku); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidProduct, product.Key, err)
		}
		if _, dup := numbers[sku.ProductNumber]; dup {
			return fmt.Errorf("%w: %s: %w: %s", ErrInvalidProduct, product.Key, ErrDuplicateProductNumber, sku.ProductNumber)
		}
		numbers[sku.ProductNumber] = struct{}{}
	}

	return nil
}

// ValidateEntityScope validates a single entity scope mapping.
// An entity type is required, and the mapping must restrict something:
// a search scope, a SKU attribute, or both.
func ValidateEntityScope(scope EntityScope) error {
	if scope.Entity == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntityScope, ErrEmptyEntityType)
	}
	if scope.Scope == "" && scope.Sku == "" {
		return fmt.Errorf("%w: %s maps to neither a scope nor a sku attribute", ErrInvalidEntityScope, scope.Entity)
	}
	return nil
}

// ValidateEntityScopes validates a list of mappings and rejects repeated entity types.
func ValidateEntityScopes(scopes []EntityScope) error {
	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		if err := ValidateEntityScope(s); err != nil {
			return err
		}
		if _, dup := seen[s.Entity]; dup {
			return fmt.Errorf("%w: %w: %s", ErrInvalidEntityScope, ErrDuplicateEntityType, s.Entity)
		}
		seen[s.Entity] = struct{}{}
	}
	return nil
}
