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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSku indicates a ProductSku failed validation.
	ErrInvalidSku = errors.New("invalid sku")

	// ErrInvalidProduct indicates a Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidEntityScope indicates an EntityScope failed validation.
	ErrInvalidEntityScope = errors.New("invalid entity scope")

	// ErrEmptyProductNumber indicates a SKU has no product number.
	ErrEmptyProductNumber = errors.New("product number cannot be empty")

	// ErrEmptyAttributeName indicates a SKU attribute has no name.
	ErrEmptyAttributeName = errors.New("attribute name cannot be empty")

	// ErrDuplicateAttribute indicates a SKU names the same attribute twice.
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrDuplicateProductNumber indicates two SKUs of a product share a product number.
	ErrDuplicateProductNumber = errors.New("duplicate product number")

	// ErrEmptyProductKey indicates the product Key field is empty.
	ErrEmptyProductKey = errors.New("product key cannot be empty")

	// ErrEmptyEntityType indicates an entity scope has no entity type.
	ErrEmptyEntityType = errors.New("entity type cannot be empty")

	// ErrDuplicateEntityType indicates two scopes map the same entity type.
	ErrDuplicateEntityType = errors.New("duplicate entity type")
)
