package classify

import "errors"

var (
	// ErrInvalidConfig indicates thresholds outside their legal ranges.
	ErrInvalidConfig = errors.New("invalid classifier config")
)
