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


// Package ai provides abstractions for AI services used in grimoire.
//
// This package defines interfaces for text embedding generation. It follows
// the dependency inversion principle, allowing the search and ingestion
// logic to depend on abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around two key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Provider: Aggregates AI services for convenient initialization
//
// Concrete implementations live in subpackages: ai/openai wraps any
// OpenAI-compatible embedding API, ai/mock provides deterministic test
// doubles.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use; a single Embedder
// is shared by the ingestion worker pool and concurrent query goroutines.
package ai
