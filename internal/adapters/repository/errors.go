package repository

import "errors"

// Sentinel kinds for allocation store errors.
var (
	ErrNotFound     = errors.New("contributor not found")
	ErrInvalidLimit = errors.New("invalid top-n limit")
)
