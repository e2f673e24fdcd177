// Package sku narrows a product's SKU set to a single configuration.
//
// Recognized entities act as soft evidence: a filter derived from an entity
// is skipped when it would leave no candidates. Explicit user selections are
// hard constraints and always apply.
package sku
