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


// Package search finds catalog products matching a spoken query.
//
// A query is built from the transcribed utterance plus a scope expression
// derived from the recognized entities, evaluated by an Index, and the hits
// are ranked by lexical similarity of their names to the utterance. Only the
// documents tied for the best score are returned.
//
// The Finder composes these steps. Find runs them synchronously; FindProduct
// runs them on a worker pool and always delivers the outcome to a callback on
// that pool, never on the caller's goroutine.
package search
