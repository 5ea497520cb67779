// Package model contains domain models passed between layers.
package model

import "time"

// Observation represents one observed co-occurrence of contributors, as
// submitted by collectors.
type Observation struct {
	ObservationID string    // unique id for transport-level idempotency
	Members       []string  // contributor identifiers, possibly with duplicates
	TS            time.Time // observation timestamp
}

// Share captures one row of a published allocation.
type Share struct {
	Contributor string
	Value       float64 // raw Shapley value
	Fraction    float64 // Value / total, 0 when the total is 0
}
