// Copyright 2026 Glyphica Labs
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

	"github.com/glyphica/iconsearch/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for persisted values. Hand-written in the generated
// serializer style; the wire layout is part of the on-disk format and
// must stay stable.
var (
	// EmbeddingMUS serializes embedding vectors.
	EmbeddingMUS = ord.NewSliceSer[float32](varint.Float32)

	// MetadataMUS serializes flattened metadata maps.
	MetadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)

	// StringSliceMUS serializes tag overlays.
	StringSliceMUS = ord.NewSliceSer[string](ord.String)

	// ItemMUS serializes a single vector store item.
	ItemMUS = itemMUS{}
)

type itemMUS struct{}

func (itemMUS) Marshal(v core.VectorStoreItem, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += EmbeddingMUS.Marshal(v.Embedding, bs[n:])
	n += MetadataMUS.Marshal(v.Metadata, bs[n:])
	return n
}

func (itemMUS) Unmarshal(bs []byte) (v core.VectorStoreItem, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Embedding, n1, err = EmbeddingMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Metadata, n1, err = MetadataMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (itemMUS) Size(v core.VectorStoreItem) (size int) {
	size = ord.String.Size(v.Id)
	size += EmbeddingMUS.Size(v.Embedding)
	size += MetadataMUS.Size(v.Metadata)
	return size
}

func (s itemMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// MarshalItem serializes a VectorStoreItem to bytes.
func MarshalItem(item *core.VectorStoreItem) []byte {
	buf := make([]byte, ItemMUS.Size(*item))
	ItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes a VectorStoreItem from bytes.
func UnmarshalItem(data []byte) (*core.VectorStoreItem, error) {
	item, _, err := ItemMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return &item, nil
}

// MarshalItems serializes a vector set as a length-prefixed sequence.
func MarshalItems(items []core.VectorStoreItem) []byte {
	size := varint.Int.Size(len(items))
	for i := range items {
		size += ItemMUS.Size(items[i])
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(len(items), buf)
	for i := range items {
		n += ItemMUS.Marshal(items[i], buf[n:])
	}
	return buf
}

// UnmarshalItems deserializes a vector set.
func UnmarshalItems(data []byte) ([]core.VectorStoreItem, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative item count", ErrCorruptRecord)
	}

	items := make([]core.VectorStoreItem, 0, count)
	for i := 0; i < count; i++ {
		item, n1, err := ItemMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrCorruptRecord, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// MarshalTags serializes a tag overlay to bytes.
func MarshalTags(tags []string) []byte {
	buf := make([]byte, StringSliceMUS.Size(tags))
	StringSliceMUS.Marshal(tags, buf)
	return buf
}

// UnmarshalTags deserializes a tag overlay from bytes.
func UnmarshalTags(data []byte) ([]string, error) {
	tags, _, err := StringSliceMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return tags, nil
}
