package suggest

import "errors"

var (
	// ErrVocabularyRequired indicates a nil vocabulary index was supplied.
	ErrVocabularyRequired = errors.New("vocabulary index is required")
)
