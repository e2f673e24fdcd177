// Package mock provides test double implementations of the language service interfaces.
//
// This package contains mock implementations of ai.Transcriber, ai.EntityExtractor,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	extractor := mock.NewMockEntityExtractor()
//	extractor.ExtractEntitiesFunc = func(ctx context.Context, utterance string) (*ai.EntityResult, error) {
//	    return &ai.EntityResult{Query: utterance}, nil
//	}
//	provider := mock.NewMockProviderWithServices(mock.NewMockTranscriber(), extractor)
//
// # Default Behavior
//
//   - MockTranscriber: returns the audio bytes as the utterance
//   - MockEntityExtractor: recognizes words listed in its vocabulary
//   - MockProvider: aggregates mock transcriber and extractor
package mock
