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

// Package vocab maintains the live vocabulary over all indexed chunks: per
// term document frequency, occurrence counts, and chunk membership. It backs
// keyword scoring, spelling correction, and autocompletion.
//
// The index is a copy-on-write structure. Queries read an immutable snapshot
// without taking locks; ingestion builds the next snapshot under a writer
// mutex and publishes it atomically. A query running concurrently with an
// ingestion may miss the new chunk's terms but never observes a partially
// updated count.
package vocab
