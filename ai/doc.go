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


// Package ai provides abstractions for the language services product search
// depends on: speech transcription and entity extraction.
//
// The core search and narrowing logic depends only on the interfaces defined
// here, never on a concrete service.
//
//   - Transcriber: converts recorded speech to an utterance
//   - EntityExtractor: recognizes typed, resolved entities in an utterance
//   - AIProvider: aggregates both for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types. The mock
// constructors return concrete types so tests can inject behavior and
// inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEntityTypes("color", "size"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	speech, err := provider.Transcriber().Transcribe(ctx, clip, "clip.wav")
//	entities, err := provider.EntityExtractor().ExtractEntities(ctx, speech.Header.Name)
package ai
