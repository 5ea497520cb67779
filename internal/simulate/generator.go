// Package simulate generates synthetic observation streams for
// exercising the allocation pipeline end to end.
package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairshare/internal/domain/model"
	"github.com/okian/fairshare/pkg/logger"
)

// Default generator configuration constants.
const (
	defaultContributorCount = 12
	defaultMaxCoalitionSize = 4
	defaultSeed             = 1
)

// Generator produces observations over a fixed contributor pool with
// skewed co-occurrence: low-index contributors appear far more often, so
// the resulting allocation has a clear head and tail.
type Generator struct {
	contributors []string
	weights      []float64
	totalWeight  float64
	maxSize      int
	rng          *rand.Rand

	logger logger.Logger
}

// New creates a generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		maxSize: defaultMaxCoalitionSize,
		rng:     rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // simulation, not security-sensitive
		logger:  logger.Get().Named("simulate"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	if g.contributors == nil {
		g.setContributorCount(defaultContributorCount)
	}

	return g
}

// setContributorCount builds the pool and its Zipf-like sampling weights.
func (g *Generator) setContributorCount(count int) {
	g.contributors = make([]string, count)
	g.weights = make([]float64, count)
	g.totalWeight = 0
	for i := range g.contributors {
		g.contributors[i] = fmt.Sprintf("contrib-%02d", i)
		g.weights[i] = 1 / float64(i+1)
		g.totalWeight += g.weights[i]
	}
}

// Contributors returns the contributor pool.
func (g *Generator) Contributors() []string {
	out := make([]string, len(g.contributors))
	copy(out, g.contributors)
	return out
}

// Next produces one observation. Coalition size is uniform in
// [1, maxSize] capped at the pool size; members are sampled without
// replacement, weighted by contributor popularity.
func (g *Generator) Next() model.Observation {
	size := 1 + g.rng.Intn(g.maxSize)
	if size > len(g.contributors) {
		size = len(g.contributors)
	}

	picked := make(map[int]struct{}, size)
	members := make([]string, 0, size)
	for len(members) < size {
		i := g.sample(picked)
		picked[i] = struct{}{}
		members = append(members, g.contributors[i])
	}

	return model.Observation{
		ObservationID: uuid.New().String(),
		Members:       members,
		TS:            time.Now().UTC(),
	}
}

// sample draws one contributor index by weight, skipping already picked
// ones.
func (g *Generator) sample(picked map[int]struct{}) int {
	remaining := g.totalWeight
	for i := range picked {
		remaining -= g.weights[i]
	}

	target := g.rng.Float64() * remaining
	for i, w := range g.weights {
		if _, ok := picked[i]; ok {
			continue
		}
		target -= w
		if target <= 0 {
			return i
		}
	}
	// Float rounding can leave a sliver; fall back to the last unpicked.
	for i := len(g.weights) - 1; i >= 0; i-- {
		if _, ok := picked[i]; !ok {
			return i
		}
	}
	return 0
}

// Observations produces a batch of n observations.
func (g *Generator) Observations(ctx context.Context, n int) []model.Observation {
	g.logger.Info(ctx, "generating observations",
		logger.Int("count", n),
		logger.Int("contributors", len(g.contributors)),
	)

	out := make([]model.Observation, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
