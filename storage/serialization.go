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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/productfinder/core"
)

// productVersion tags the encoding of stored products.
const productVersion = 1

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalProduct serializes a Product to bytes. The transient document
// score is not stored.
func MarshalProduct(product *core.Product) []byte {
	buf := make([]byte, sizeProduct(product))
	marshalProduct(product, buf)
	return buf
}

// UnmarshalProduct deserializes a Product from bytes.
func UnmarshalProduct(data []byte) (*core.Product, error) {
	product, _, err := unmarshalProduct(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return product, nil
}

func sizeProduct(p *core.Product) int {
	d := &p.Document
	size := varint.Int.Size(productVersion) +
		ord.String.Size(p.Key) +
		ord.String.Size(d.Name) +
		ord.String.Size(d.Category) +
		sizeStrings(d.Colors) +
		sizeStrings(d.Sizes) +
		ord.String.Size(d.Sex) +
		sizeStrings(d.Products) +
		ord.String.Size(d.Description) +
		varint.Int.Size(len(p.Skus)) +
		varint.Int64.Size(timeToMicros(p.InsertedAt)) +
		varint.Int64.Size(timeToMicros(p.UpdatedAt))
	for _, sku := range p.Skus {
		size += ord.String.Size(sku.ProductNumber)
		size += varint.Int.Size(len(sku.Attributes))
		for _, attr := range sku.Attributes {
			size += ord.String.Size(attr.Name) + ord.String.Size(attr.Value)
		}
	}
	return size
}

func marshalProduct(p *core.Product, bs []byte) int {
	d := &p.Document
	n := varint.Int.Marshal(productVersion, bs)
	n += ord.String.Marshal(p.Key, bs[n:])
	n += ord.String.Marshal(d.Name, bs[n:])
	n += ord.String.Marshal(d.Category, bs[n:])
	n += marshalStrings(d.Colors, bs[n:])
	n += marshalStrings(d.Sizes, bs[n:])
	n += ord.String.Marshal(d.Sex, bs[n:])
	n += marshalStrings(d.Products, bs[n:])
	n += ord.String.Marshal(d.Description, bs[n:])
	n += varint.Int.Marshal(len(p.Skus), bs[n:])
	for _, sku := range p.Skus {
		n += ord.String.Marshal(sku.ProductNumber, bs[n:])
		n += varint.Int.Marshal(len(sku.Attributes), bs[n:])
		for _, attr := range sku.Attributes {
			n += ord.String.Marshal(attr.Name, bs[n:])
			n += ord.String.Marshal(attr.Value, bs[n:])
		}
	}
	n += varint.Int64.Marshal(timeToMicros(p.InsertedAt), bs[n:])
	n += varint.Int64.Marshal(timeToMicros(p.UpdatedAt), bs[n:])
	return n
}

func unmarshalProduct(bs []byte) (*core.Product, int, error) {
	r := reader{bs: bs}

	if version := r.int(); r.err == nil && version != productVersion {
		return nil, r.n, fmt.Errorf("unsupported product encoding version %d", version)
	}

	p := &core.Product{}
	p.Key = r.string()
	p.Document.Key = p.Key
	p.Document.Name = r.string()
	p.Document.Category = r.string()
	p.Document.Colors = r.strings()
	p.Document.Sizes = r.strings()
	p.Document.Sex = r.string()
	p.Document.Products = r.strings()
	p.Document.Description = r.string()

	skuCount := r.length()
	if skuCount > 0 {
		p.Skus = make([]core.ProductSku, 0, skuCount)
	}
	for i := 0; i < skuCount && r.err == nil; i++ {
		sku := core.ProductSku{ProductNumber: r.string()}
		attrCount := r.length()
		if attrCount > 0 {
			sku.Attributes = make([]core.Attribute, 0, attrCount)
		}
		for j := 0; j < attrCount && r.err == nil; j++ {
			name := r.string()
			value := r.string()
			sku.Attributes = append(sku.Attributes, core.Attribute{Name: name, Value: value})
		}
		p.Skus = append(p.Skus, sku)
	}

	p.InsertedAt = microsToTime(r.int64())
	p.UpdatedAt = microsToTime(r.int64())

	if r.err != nil {
		return nil, r.n, r.err
	}
	return p, r.n, nil
}

func sizeStrings(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

func marshalStrings(ss []string, bs []byte) int {
	n := varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

// reader decodes consecutive values and keeps the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

// length reads a collection length, rejecting values the remaining bytes
// cannot possibly hold.
func (r *reader) length() int {
	l := r.int()
	if r.err == nil && (l < 0 || l > len(r.bs)-r.n) {
		r.err = fmt.Errorf("invalid length %d", l)
		return 0
	}
	return l
}

func (r *reader) strings() []string {
	count := r.length()
	if count == 0 {
		return nil
	}
	out := make([]string, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		out = append(out, r.string())
	}
	return out
}

// timeToMicros encodes the zero time as 0 so it survives a round trip.
func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microsToTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}
