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


package badger

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/storage"
)

// occurrence is how a clause takes part in matching.
type occurrence int

const (
	occurShould occurrence = iota
	occurMust
	occurMustNot
)

// clause is one parsed element of a search expression.
type clause struct {
	occur occurrence
	field string   // empty for unfielded clauses
	words []string // lowercased words of the value
	raw   string   // value as written, for equality checks
	all   bool     // the match-all term *
}

// searchableFields are matched by unfielded clauses.
var searchableFields = []string{"name", "category", "description", "colors", "sizes", "sex"}

// knownFields are the document fields addressable by select and fielded clauses.
var knownFields = map[string]bool{
	"key": true, "name": true, "category": true, "colors": true, "sizes": true,
	"sex": true, "products": true, "description": true,
}

// parseQuery turns a search expression into clauses. The full dialect
// supports +/- operators, field:value and field:"phrase" clauses, quoted
// phrases, and *. The simple dialect treats every whitespace separated
// token as an optional term. Parsing never fails: a field with no value is
// read as a plain term and an unterminated quote as literal text.
func parseQuery(query core.QueryOptions) []clause {
	if query.QueryType != core.QueryTypeFull {
		var clauses []clause
		for _, tok := range strings.Fields(query.Search) {
			if c, ok := newClause(occurShould, "", tok); ok {
				clauses = append(clauses, c)
			}
		}
		return clauses
	}

	p := &queryParser{runes: []rune(query.Search)}
	return p.parse()
}

type queryParser struct {
	runes []rune
	pos   int
}

func (p *queryParser) parse() []clause {
	var clauses []clause
	for {
		p.skipSpace()
		if p.pos >= len(p.runes) {
			return clauses
		}

		occur := occurShould
		switch p.runes[p.pos] {
		case '+':
			occur = occurMust
			p.pos++
		case '-':
			occur = occurMustNot
			p.pos++
		}

		var field, value string
		if p.at('"') {
			value = p.phraseOrLiteral()
		} else {
			term := p.term()
			switch {
			case term != "" && p.at(':'):
				p.pos++
				if p.at('"') {
					value = p.phraseOrLiteral()
				} else {
					value = p.term()
				}
				if value == "" {
					value = term // "word:" followed by a space
				} else {
					field = strings.ToLower(term)
				}
			case term == "" && p.at(':'):
				p.pos++ // stray colon
			default:
				value = term
			}
		}

		if c, ok := newClause(occur, field, value); ok {
			clauses = append(clauses, c)
		}
	}
}

func (p *queryParser) skipSpace() {
	for p.pos < len(p.runes) && unicode.IsSpace(p.runes[p.pos]) {
		p.pos++
	}
}

// term reads up to whitespace or a colon. A quote inside a term is literal;
// phrases open only at the start of a clause or a field value.
func (p *queryParser) term() string {
	start := p.pos
	for p.pos < len(p.runes) {
		r := p.runes[p.pos]
		if unicode.IsSpace(r) || r == ':' {
			break
		}
		p.pos++
	}
	return string(p.runes[start:p.pos])
}

func (p *queryParser) at(r rune) bool {
	return p.pos < len(p.runes) && p.runes[p.pos] == r
}

// phraseOrLiteral reads a quoted phrase. When the quote is never closed it
// consumes only the quote itself, so the text after it parses as terms.
func (p *queryParser) phraseOrLiteral() string {
	start := p.pos
	if phrase, ok := p.quoted(); ok {
		return phrase
	}
	p.pos = start + 1
	return ""
}

// quoted reads a double-quoted phrase starting at the opening quote.
// Backslash escapes the next rune.
func (p *queryParser) quoted() (string, bool) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.runes) {
		r := p.runes[p.pos]
		switch {
		case r == '\\' && p.pos+1 < len(p.runes):
			sb.WriteRune(p.runes[p.pos+1])
			p.pos += 2
		case r == '"':
			p.pos++
			return sb.String(), true
		default:
			sb.WriteRune(r)
			p.pos++
		}
	}
	return "", false
}

// newClause builds a clause; values without any word are dropped.
func newClause(occur occurrence, field, value string) (clause, bool) {
	if value == "*" && field == "" {
		return clause{occur: occur, all: true}, true
	}
	words := splitWords(value)
	if len(words) == 0 {
		return clause{}, false
	}
	return clause{occur: occur, field: field, words: words, raw: value}, true
}

// splitWords lowercases text and splits it on anything but letters and digits.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fieldValues returns the values of a document field.
func fieldValues(doc *core.Document, field string) []string {
	switch field {
	case "key":
		return []string{doc.Key}
	case "name":
		return []string{doc.Name}
	case "category":
		return []string{doc.Category}
	case "sex":
		return []string{doc.Sex}
	case "description":
		return []string{doc.Description}
	case "colors":
		return doc.Colors
	case "sizes":
		return doc.Sizes
	case "products":
		return doc.Products
	default:
		return nil
	}
}

// matches reports whether the clause's value occurs in the document.
// A fielded clause matches a value equal to it ignoring case, or one that
// contains its words in sequence. Unfielded clauses search the searchable fields.
func (c clause) matches(doc *core.Document) bool {
	if c.all {
		return true
	}
	fields := searchableFields
	if c.field != "" {
		fields = []string{c.field}
	}
	for _, f := range fields {
		for _, v := range fieldValues(doc, f) {
			if strings.EqualFold(v, c.raw) || containsSequence(splitWords(v), c.words) {
				return true
			}
		}
	}
	return false
}

// containsSequence reports whether needle occurs contiguously in haystack.
func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

// score evaluates the clauses against a document. Required clauses must all
// match and prohibited clauses must not. Without required clauses at least
// one optional clause must match, unless there are none. The score counts
// the matching optional clauses.
func score(clauses []clause, doc *core.Document) (int, bool) {
	hasMust := false
	optional := 0
	matched := 0
	for _, c := range clauses {
		ok := c.matches(doc)
		switch c.occur {
		case occurMust:
			hasMust = true
			if !ok {
				return 0, false
			}
		case occurMustNot:
			if ok {
				return 0, false
			}
		default:
			optional++
			if ok {
				matched++
			}
		}
	}
	if !hasMust && optional > 0 && matched == 0 {
		return 0, false
	}
	return matched, true
}

// parseSelect returns the projected fields; an empty projection selects all.
func parseSelect(sel string) (map[string]bool, error) {
	if strings.TrimSpace(sel) == "" || strings.TrimSpace(sel) == "*" {
		return nil, nil
	}
	fields := make(map[string]bool)
	for _, f := range strings.Split(sel, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !knownFields[f] {
			return nil, fmt.Errorf("%w: unknown select field %q", storage.ErrInvalidQuery, f)
		}
		fields[f] = true
	}
	return fields, nil
}

// project copies the selected fields of doc. The key is always kept.
func project(doc *core.Document, fields map[string]bool) *core.Document {
	out := &core.Document{Key: doc.Key}
	if fields == nil || fields["name"] {
		out.Name = doc.Name
	}
	if fields == nil || fields["category"] {
		out.Category = doc.Category
	}
	if fields == nil || fields["colors"] {
		out.Colors = append([]string(nil), doc.Colors...)
	}
	if fields == nil || fields["sizes"] {
		out.Sizes = append([]string(nil), doc.Sizes...)
	}
	if fields == nil || fields["sex"] {
		out.Sex = doc.Sex
	}
	if fields == nil || fields["products"] {
		out.Products = append([]string(nil), doc.Products...)
	}
	if fields == nil || fields["description"] {
		out.Description = doc.Description
	}
	return out
}
