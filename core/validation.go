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

import "fmt"

// ValidateContentChunk validates a ContentChunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Source and System must not be empty
//   - SourceKind and ContentType must be valid
//   - Confidence must be in [0, 1]
//
// NOT validated (populated by the pipeline):
//   - Vector (can be empty until the embedding worker runs)
//   - Id (derived from content at ingestion time)
func ValidateContentChunk(chunk *ContentChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	if chunk.System == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySystem)
	}

	if err := ValidateSourceKind(chunk.SourceKind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if err := ValidateContentType(chunk.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.Confidence < 0 || chunk.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidConfidence)
	}

	return nil
}

// ValidatePatternEntry validates a PatternEntry according to domain rules.
//
// Validation rules:
//   - System must not be empty
//   - Kind and ContentType must be valid
//   - Keyword-set matchers must carry at least one keyword
//   - Confidence must be in [0, 1]
func ValidatePatternEntry(entry *PatternEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidPattern)
	}

	if entry.System == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, ErrEmptySystem)
	}

	if err := ValidateMatcherKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	if entry.Kind == MatcherKeywordSet && len(entry.Keywords) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, ErrEmptyKeywords)
	}

	if err := ValidateContentType(entry.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	if entry.Confidence < 0 || entry.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, ErrInvalidConfidence)
	}

	return nil
}

// ValidateSourceKind validates that a SourceKind has a valid value.
func ValidateSourceKind(kind SourceKind) error {
	if kind != SourceKindRulebook && kind != SourceKindFlavor {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceKind, kind)
	}
	return nil
}

// ValidateContentType validates that a ContentType has a valid value.
func ValidateContentType(t ContentType) error {
	if t < ContentTypeText || t > ContentTypeTable {
		return fmt.Errorf("%w: value %d", ErrInvalidContentType, t)
	}
	return nil
}

// ValidateMatcherKind validates that a MatcherKind has a valid value.
func ValidateMatcherKind(kind MatcherKind) error {
	if kind < MatcherKeywordSet || kind > MatcherDelimiterDensity {
		return fmt.Errorf("%w: value %d", ErrInvalidMatcherKind, kind)
	}
	return nil
}
