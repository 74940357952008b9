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

// Package classify implements the adaptive content-type classifier. Each
// game system carries a bounded cache of learned pattern entries; chunk text
// is evaluated against cached matchers first, then generic structural
// heuristics. Confident heuristic hits are promoted into new cached
// patterns, and downstream confirmations or corrections reinforce the cache
// over time. Patterns persist through a storage.PatternRepository so the
// cache survives restarts.
package classify
