package search

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`\W`)

// tokenize replaces every non-word character with a space, lowercases the
// text, and splits it on whitespace. Text without any word characters yields
// a single empty token, so the token count is never zero.
func tokenize(text string) []string {
	cleaned := strings.ToLower(strings.TrimSpace(nonWord.ReplaceAllString(text, " ")))
	if cleaned == "" {
		return []string{""}
	}
	return strings.Fields(cleaned)
}

// symmetricDifference counts the distinct tokens present in exactly one of a and b.
func symmetricDifference(a, b []string) int {
	inA := make(map[string]bool, len(a))
	for _, t := range a {
		inA[t] = true
	}
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}

	count := 0
	for t := range inA {
		if !inB[t] {
			count++
		}
	}
	for t := range inB {
		if !inA[t] {
			count++
		}
	}
	return count
}
