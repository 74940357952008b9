package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrVocabularyRequired is returned when a vocabulary index is not provided.
	ErrVocabularyRequired = errors.New("vocabulary index required")

	// ErrClassifierRequired is returned when a classifier is not provided.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyContent is returned when a chunk input has no text content.
	ErrEmptyContent = errors.New("chunk content required")

	// ErrSourceRequired is returned when a chunk input names no source.
	ErrSourceRequired = errors.New("chunk source required")
)
