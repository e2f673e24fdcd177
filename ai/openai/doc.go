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


// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// Entity extraction uses a chat model in JSON mode through langchaingo; the
// model is prompted with the configured entity types and its output is
// repaired and validated before it becomes domain entities. Transcription
// posts audio to the /audio/transcriptions endpoint served by OpenAI and by
// local whisper servers.
//
// # Configuration
//
//	config := ai.NewConfig(
//	    ai.WithExtractorHost("http://localhost:11434"),   // /v1 added automatically
//	    ai.WithTranscriberHost("http://localhost:8000"),
//	    ai.WithEntityTypes("color", "size", "category"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	result, err := provider.EntityExtractor().ExtractEntities(ctx, "red shirt in medium")
package openai
