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
	"github.com/poiesic/grimoire/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalContentChunk serializes a ContentChunk to bytes.
func MarshalContentChunk(chunk *core.ContentChunk) []byte {
	buf := make([]byte, core.ContentChunkMUS.Size(*chunk))
	core.ContentChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalContentChunk deserializes a ContentChunk from bytes.
func UnmarshalContentChunk(data []byte) (*core.ContentChunk, error) {
	chunk, _, err := core.ContentChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalPatternEntry serializes a PatternEntry to bytes.
func MarshalPatternEntry(entry *core.PatternEntry) []byte {
	buf := make([]byte, core.PatternEntryMUS.Size(*entry))
	core.PatternEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalPatternEntry deserializes a PatternEntry from bytes.
func UnmarshalPatternEntry(data []byte) (*core.PatternEntry, error) {
	entry, _, err := core.PatternEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
