package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "product key", content: "shirt-001"},
		{name: "empty string", content: ""},
		{name: "long content", content: "a much longer product key that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("shirt-001") == IDFromContent("shirt-002") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestEntity_Canonical(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
		wantOk bool
	}{
		{
			name:   "first resolution wins",
			entity: Entity{Type: "color", Resolutions: []Resolution{{Value: "Red"}, {Value: "Crimson"}}},
			want:   "Red",
			wantOk: true,
		},
		{
			name:   "unresolved entity",
			entity: Entity{Type: "color", Text: "reddish"},
			want:   "",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.entity.Canonical()
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("Canonical() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestProductSku_Get(t *testing.T) {
	sku := ProductSku{
		ProductNumber: "P1",
		Attributes:    []Attribute{{Name: "color", Value: "red"}, {Name: "size", Value: "M"}},
	}

	if v, ok := sku.Get("size"); !ok || v != "M" {
		t.Errorf("Get(size) = (%q, %v), want (M, true)", v, ok)
	}
	if v, ok := sku.Get(ProductNumberKey); !ok || v != "P1" {
		t.Errorf("Get(productNumber) = (%q, %v), want (P1, true)", v, ok)
	}
	if _, ok := sku.Get("fit"); ok {
		t.Errorf("Get(fit) should report a missing attribute")
	}
}

func TestScopeTable(t *testing.T) {
	table := NewScopeTable(
		EntityScope{Entity: "color", Scope: "colors", Sku: "color"},
		EntityScope{Entity: "category", Scope: "category"},
		EntityScope{Entity: "color", Scope: "ignored"},
	)

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	s, ok := table.Lookup("color")
	if !ok || s.Scope != "colors" {
		t.Errorf("Lookup(color) = (%+v, %v), first mapping should win", s, ok)
	}
	if _, ok := table.Lookup("size"); ok {
		t.Errorf("Lookup(size) should not find a mapping")
	}

	types := table.EntityTypes()
	if len(types) != 2 || types[0] != "color" || types[1] != "category" {
		t.Errorf("EntityTypes() = %v, want [color category]", types)
	}

	scopes := table.Scopes()
	scopes[0].Scope = "mutated"
	if s, _ := table.Lookup("color"); s.Scope != "colors" {
		t.Errorf("Scopes() must return a copy")
	}

	var nilTable *ScopeTable
	if _, ok := nilTable.Lookup("color"); ok {
		t.Errorf("nil table should have no mappings")
	}
}
