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


package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the SKU as a flat object, product number first,
// followed by the attributes in their stored order.
func (s ProductSku) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, ProductNumberKey, s.ProductNumber); err != nil {
		return nil, err
	}
	for _, attr := range s.Attributes {
		buf.WriteByte(',')
		if err := writeMember(&buf, attr.Name, attr.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name, value string) error {
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON decodes a flat SKU object, keeping attribute order as it
// appears in the input. A repeated member keeps its first position and its
// last value. Every member value must be a JSON string.
func (s *ProductSku) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: sku must be a JSON object", ErrInvalidSku)
	}

	sku := ProductSku{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrInvalidSku, tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%w: attribute %q: %w", ErrInvalidSku, name, err)
		}
		if name == ProductNumberKey {
			sku.ProductNumber = value
			continue
		}
		sku.set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = sku
	return nil
}

// set overwrites the named attribute in place or appends it.
func (s *ProductSku) set(name, value string) {
	for i := range s.Attributes {
		if s.Attributes[i].Name == name {
			s.Attributes[i].Value = value
			return
		}
	}
	s.Attributes = append(s.Attributes, Attribute{Name: name, Value: value})
}
