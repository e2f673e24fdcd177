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

import "strings"

// repairJSON fixes the formatting mistakes small models make most often:
// keys that lost their opening quote (`, type":`), fully unquoted keys
// (`{type: "color"}`), and trailing commas before a closing bracket.
// String literals are copied through untouched.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	runes := []rune(s)
	inString := false
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inString {
			out.WriteRune(ch)
			if ch == '\\' && i+1 < len(runes) {
				i++
				out.WriteRune(runes[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)
		case ',':
			// Drop a trailing comma before } or ]
			j := skipSpace(runes, i+1)
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
			out.WriteRune(ch)
			i = quoteKey(runes, i+1, &out) - 1
		case '{':
			out.WriteRune(ch)
			i = quoteKey(runes, i+1, &out) - 1
		default:
			out.WriteRune(ch)
		}
	}

	return out.String()
}

// quoteKey copies whitespace starting at pos and, when an unquoted key follows,
// writes it quoted. It returns the position of the first rune not consumed.
func quoteKey(runes []rune, pos int, out *strings.Builder) int {
	j := skipSpace(runes, pos)
	for k := pos; k < j; k++ {
		out.WriteRune(runes[k])
	}
	if j >= len(runes) || !isKeyRune(runes[j]) {
		return j
	}

	end := j
	for end < len(runes) && isKeyRune(runes[end]) {
		end++
	}
	key := string(runes[j:end])

	switch {
	case end+1 < len(runes) && runes[end] == '"' && runes[end+1] == ':':
		// Missing opening quote only
		out.WriteString(`"` + key + `"`)
		return end + 1
	case end < len(runes) && skipSpace(runes, end) < len(runes) && runes[skipSpace(runes, end)] == ':':
		// Entirely unquoted key
		out.WriteString(`"` + key + `"`)
		return end
	default:
		// Not a key (e.g. a literal inside an array); copy unchanged
		out.WriteString(key)
		return end
	}
}

func skipSpace(runes []rune, pos int) int {
	for pos < len(runes) && (runes[pos] == ' ' || runes[pos] == '\n' || runes[pos] == '\t' || runes[pos] == '\r') {
		pos++
	}
	return pos
}
