package simulate

import (
	"math/rand"

	"github.com/okian/fairshare/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithContributorCount sets the size of the contributor pool.
func WithContributorCount(count int) Option {
	return func(g *Generator) {
		if count > 0 {
			g.setContributorCount(count)
		}
	}
}

// WithMaxCoalitionSize caps the number of members per observation.
func WithMaxCoalitionSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.maxSize = size
		}
	}
}

// WithSeed makes the stream deterministic for a given seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not security-sensitive
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
