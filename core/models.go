package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for catalog records.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ProductNumberKey is the reserved attribute name carrying a SKU's product number.
// It is never treated as a narrowing attribute.
const ProductNumberKey = "productNumber"

// Resolution is one canonical value an entity was resolved to.
type Resolution struct {
	Value    string            `json:"value" yaml:"value"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Entity is a typed span recognized in an utterance.
// Resolutions are ordered; the first one is the canonical value.
type Entity struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Resolutions []Resolution `json:"resolutions,omitempty"`
}

// Canonical returns the first resolution value of the entity.
// The boolean is false when the entity was not resolved to anything.
func (e Entity) Canonical() (string, bool) {
	if len(e.Resolutions) == 0 {
		return "", false
	}
	return e.Resolutions[0].Value, true
}

// Document is a candidate product document returned by a search index.
// Score is transient: it is written by the ranker and only comparable
// within a single ranking call.
type Document struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Sex         string   `json:"sex,omitempty"`
	Products    []string `json:"products,omitempty"`
	Description string   `json:"description,omitempty"`
	Score       float64  `json:"score"`
}

// Attribute is a single name/value pair of a SKU.
type Attribute struct {
	Name  string
	Value string
}

// ProductSku is a concrete sellable configuration of a product: a flat,
// ordered attribute tuple plus a product number unique within the product.
type ProductSku struct {
	ProductNumber string
	Attributes    []Attribute
}

// Get returns the value of the named attribute.
// The product number is addressable under ProductNumberKey.
func (s ProductSku) Get(name string) (string, bool) {
	if name == ProductNumberKey {
		return s.ProductNumber, true
	}
	for _, attr := range s.Attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SkuSelection is the caller-owned narrowing state for one conversational turn.
type SkuSelection struct {
	Product   string            `json:"product"`
	Skus      []ProductSku      `json:"skus"`
	Entities  []Entity          `json:"entities,omitempty"`
	Selected  map[string]string `json:"selected,omitempty"`
	Attribute string            `json:"attribute,omitempty"` // attribute currently being resolved
}

// AttributeChoice is an attribute that still has more than one candidate value.
type AttributeChoice struct {
	Name    string   `json:"name"`
	Choices []string `json:"choices"`
}

// QueryType selects the query dialect evaluated by a search index.
type QueryType string

const (
	// QueryTypeSimple evaluates the search text as plain terms.
	QueryTypeSimple QueryType = "simple"
	// QueryTypeFull enables fielded clauses and +/- operators.
	QueryTypeFull QueryType = "full"
)

// QueryOptions is a structured search request.
type QueryOptions struct {
	QueryType QueryType `json:"queryType"`
	Search    string    `json:"search"`
	Select    string    `json:"select,omitempty"` // comma separated field projection
	Top       int       `json:"top,omitempty"`
}

// Product is a catalog record: the searchable document plus its SKU set.
type Product struct {
	Key        string
	Document   Document
	Skus       []ProductSku
	InsertedAt time.Time // When the product was first stored
	UpdatedAt  time.Time // When the product was last updated
}

// Id returns the content-derived ID of the product key.
func (p *Product) Id() ID {
	return IDFromContent(p.Key)
}
