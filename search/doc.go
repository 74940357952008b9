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

// Package search implements the hybrid ranker. Semantic similarity from the
// vector index and BM25 keyword relevance from the vocabulary run as two
// concurrent signals, are min-max normalized within the candidate pool, and
// fuse under intent-dependent weights with deterministic tie-breaking. A
// signal that times out or fails drops out of fusion; the query degrades to
// the surviving signal instead of failing.
package search
