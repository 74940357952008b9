package query

import "errors"

var (
	// ErrEmptyQuery indicates no usable terms remained after normalization.
	ErrEmptyQuery = errors.New("empty query after normalization")
	// ErrVocabularyRequired indicates a nil vocabulary index was supplied.
	ErrVocabularyRequired = errors.New("vocabulary index is required")
)
