// Package repository defines the allocation store interface and errors.
package repository

import (
	"context"

	"github.com/okian/fairshare/internal/domain/model"
)

// Entry represents one allocation row.
type Entry struct {
	Rank        int
	Contributor string
	Value       float64 // raw Shapley value
	Fraction    float64 // share of the total allocation
}

// Store provides read/write access to the published allocation.
type Store interface {
	// Publish replaces the stored allocation wholesale. Shapley values
	// move down as well as up between recomputes, so there is no
	// best-only semantics here.
	Publish(ctx context.Context, shares []model.Share) error

	// Rank returns the current rank and share for a contributor.
	// Returns ErrNotFound if the contributor is unknown.
	Rank(ctx context.Context, contributor string) (Entry, error)

	// TopN returns the top-N entries ordered by value desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of contributors in the allocation.
	Count(ctx context.Context) int
}
