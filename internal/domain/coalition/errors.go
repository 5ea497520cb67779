package coalition

import "errors"

// Sentinel kinds for coalition enumeration errors.
var (
	ErrNotSubset        = errors.New("coalition is not a subset of the universe")
	ErrUniverseTooLarge = errors.New("universe exceeds enumerable size")
)
