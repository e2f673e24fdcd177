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


package openai

import (
	"fmt"
	"strings"
)

const extractionResponseSchema = `{
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {
            "type": "string"
          },
          "text": {
            "type": "string"
          },
          "canonical": {
            "type": "string"
          }
        },
        "required": ["type", "text", "canonical"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Identify product attributes mentioned in a shopper's spoken request and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Type field must match exactly one of the listed values: %s.
- Text is the words exactly as the shopper said them.
- Canonical is the standard catalog spelling of the value, Title Case, singular (e.g. "Red", "Medium", "Women").
- Include only attributes that are explicitly mentioned. Do not hallucinate.
- Transcribed speech has no punctuation and may contain filler words; ignore them.
- If nothing can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "show me a red shirt in medium"
Output:
{
  "entities": [
    {"type":"color","text":"red","canonical":"Red"},
    {"type":"category","text":"shirt","canonical":"Shirt"},
    {"type":"size","text":"medium","canonical":"Medium"}
  ]
}

Example (informal):
Input: "um do u have like running shoes for women"
Output:
{
  "entities": [
    {"type":"category","text":"running shoes","canonical":"Running Shoe"},
    {"type":"sex","text":"women","canonical":"Women"}
  ]
}`

// buildSystemPrompt creates the system prompt with the entity types embedded.
func buildSystemPrompt(entityTypes []string) string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(entityTypes, ", "))
}
