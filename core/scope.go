package core

// EntityScope maps a recognized entity type to the search field it restricts
// and, optionally, the SKU attribute it constrains.
type EntityScope struct {
	Entity string `json:"entity" yaml:"entity"`
	Scope  string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Sku    string `json:"sku,omitempty" yaml:"sku,omitempty"`
}

// ScopeTable is an immutable lookup of entity scopes keyed by entity type.
// It is built once at startup and is safe for concurrent use.
type ScopeTable struct {
	scopes   []EntityScope
	byEntity map[string]EntityScope
}

// NewScopeTable builds a table from the given scopes. When an entity type
// appears more than once the first mapping wins.
func NewScopeTable(scopes ...EntityScope) *ScopeTable {
	t := &ScopeTable{
		scopes:   make([]EntityScope, 0, len(scopes)),
		byEntity: make(map[string]EntityScope, len(scopes)),
	}
	for _, s := range scopes {
		if _, exists := t.byEntity[s.Entity]; exists {
			continue
		}
		t.byEntity[s.Entity] = s
		t.scopes = append(t.scopes, s)
	}
	return t
}

// Lookup returns the mapping configured for an entity type.
// A nil table has no mappings.
func (t *ScopeTable) Lookup(entityType string) (EntityScope, bool) {
	if t == nil {
		return EntityScope{}, false
	}
	s, ok := t.byEntity[entityType]
	return s, ok
}

// Scopes returns a copy of the configured mappings in declaration order.
func (t *ScopeTable) Scopes() []EntityScope {
	if t == nil {
		return nil
	}
	out := make([]EntityScope, len(t.scopes))
	copy(out, t.scopes)
	return out
}

// EntityTypes returns the configured entity types in declaration order.
func (t *ScopeTable) EntityTypes() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.scopes))
	for _, s := range t.scopes {
		out = append(out, s.Entity)
	}
	return out
}

// Len returns the number of configured mappings.
func (t *ScopeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.scopes)
}
