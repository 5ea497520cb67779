package shapley

import (
	"errors"
	"fmt"

	"github.com/okian/fairshare/internal/domain/coalition"
)

// Sentinel kinds for allocation errors.
var (
	// ErrDegenerateInput is returned when normalization is requested but
	// the raw allocation sums to exactly zero (undefined ratio).
	ErrDegenerateInput = errors.New("allocation sums to zero")

	// ErrMissingValue is the kind wrapped by MissingValueError in strict
	// lookup mode.
	ErrMissingValue = errors.New("missing coalition value")
)

// MissingValueError reports a coalition that had no recorded value during
// a strict-mode computation. It carries the offending coalition so callers
// can locate the data gap.
type MissingValueError struct {
	Coalition coalition.Coalition
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("strict lookup: no value recorded for coalition %s", e.Coalition)
}

func (e *MissingValueError) Unwrap() error {
	return ErrMissingValue
}
