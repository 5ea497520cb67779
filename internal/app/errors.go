package service

import (
	"errors"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted          = errors.New("service not started")
	ErrTooManyContributors = errors.New("contributor universe exceeds configured limit")
)
