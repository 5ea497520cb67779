package shapley

import "math/rand"

// Default fixture configuration constants.
const (
	defaultRandSeed = 42
)

// RandOption applies a configuration option to RandAllocation.
type RandOption func(*randConfig)

type randConfig struct {
	seed     int64
	sumToOne bool
}

// WithSeed sets the RNG seed for reproducible fixtures.
func WithSeed(seed int64) RandOption {
	return func(c *randConfig) {
		c.seed = seed
	}
}

// WithSumToOne rescales the drawn values so they sum to 1, for callers
// that want a pre-normalized fixture.
func WithSumToOne() RandOption {
	return func(c *randConfig) {
		c.sumToOne = true
	}
}

// RandAllocation generates a synthetic allocation for the given
// contributors, each value drawn independently from Uniform(0,1).
//
// This is a test and simulation fixture only: there is no underlying
// coalition-value mapping consistent with the result, and the efficiency
// property does not hold unless the caller renormalizes.
func RandAllocation(contributors []string, opts ...RandOption) Allocation {
	c := randConfig{
		seed: defaultRandSeed, // deterministic for testing
	}
	for _, opt := range opts {
		opt(&c)
	}

	rng := rand.New(rand.NewSource(c.seed)) //nolint:gosec // fixture data, not security-sensitive

	out := make(Allocation, len(contributors))
	for _, id := range contributors {
		out[id] = rng.Float64()
	}

	if c.sumToOne {
		if total := out.Sum(); total > 0 {
			for id := range out {
				out[id] /= total
			}
		}
	}

	return out
}
