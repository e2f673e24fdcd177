package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain words", "Red Shirt", []string{"red", "shirt"}},
		{"punctuation becomes space", "men's t-shirt!", []string{"men", "s", "t", "shirt"}},
		{"whitespace runs", "  blue \t  jeans\n", []string{"blue", "jeans"}},
		{"underscore is a word char", "polo_shirt", []string{"polo_shirt"}},
		{"empty", "", []string{""}},
		{"only punctuation", "?!-", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}

func TestSymmetricDifference(t *testing.T) {
	assert.Equal(t, 0, symmetricDifference([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 2, symmetricDifference([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, 1, symmetricDifference([]string{"a", "a", "b"}, []string{"b"}))
	assert.Equal(t, 1, symmetricDifference([]string{""}, []string{}))
}
