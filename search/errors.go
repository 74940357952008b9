package search

import "errors"

var (
	// ErrChunkRepositoryRequired indicates a nil chunk repository was provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrVocabularyRequired indicates a nil vocabulary index was provided.
	ErrVocabularyRequired = errors.New("vocabulary index is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrInvalidConfig indicates ranking parameters outside their legal ranges.
	ErrInvalidConfig = errors.New("invalid search config")

	// ErrUpstreamTimeout indicates a retrieval signal exceeded its deadline.
	// Recovered internally by degrading to the signal that completed.
	ErrUpstreamTimeout = errors.New("upstream signal timed out")

	// ErrUpstreamUnavailable indicates the vector index or embedding service
	// was unreachable and the keyword fallback also produced nothing.
	ErrUpstreamUnavailable = errors.New("upstream signal unavailable")
)
