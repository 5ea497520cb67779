// Package repository defines the allocation store interface and errors.
package repository

import "math/rand"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithRandSource seeds the treap priority generator, for deterministic
// tree shapes in tests and benchmarks.
func WithRandSource(seed int64) Option {
	return func(s *TreapStore) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // treap balance, not security-sensitive
	}
}
