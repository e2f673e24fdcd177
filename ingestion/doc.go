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


// Package ingestion imports product catalogs into storage.
//
// A catalog is a JSON array of products, each carrying its searchable
// document fields and its SKUs as flat attribute objects:
//
//	[{"key": "oxford", "name": "Classic Oxford Shirt", "category": "shirts",
//	  "colors": ["Red", "Blue"], "sizes": ["S", "M"], "sex": "men",
//	  "skus": [{"productNumber": "OX-1", "color": "Red", "size": "S"}]}]
//
// The Pipeline validates products concurrently on a worker pool, skips and
// reports invalid ones, and writes the rest in batches. Batches that hit a
// storage transaction conflict are retried with exponential backoff.
package ingestion
