// Package shapley computes exact Shapley-value allocations from a
// coalition-value mapping.
//
// The Shapley value of contributor i is the weighted average of i's
// marginal contributions over every coalition not containing i:
//
//	φ_i = Σ over S ⊆ N\{i} of |S|!·(n−|S|−1)!/n! · (v(S∪{i}) − v(S))
//
// It is the unique allocation satisfying the efficiency, symmetry,
// null-player, and additivity axioms. The computation is a pure function
// of the value mapping; it holds no state and is safe for concurrent use.
//
// Cost is exponential in the universe size by design: this package does
// exact computation only, no sampling or approximation. Callers are
// responsible for bounding the universe.
package shapley

import (
	"fmt"

	"github.com/okian/fairshare/internal/domain/coalition"
)

// Allocation maps each contributor in the universe to its share of the
// total payoff.
type Allocation map[string]float64

// Sum returns the total of all shares. Without normalization this equals
// the value of the full-universe coalition (the efficiency property).
func (a Allocation) Sum() float64 {
	var total float64
	for _, v := range a {
		total += v
	}
	return total
}

// computation carries the per-call configuration.
type computation struct {
	normalize bool
	strict    bool
}

// Compute returns the exact Shapley value of every contributor appearing
// in values. The universe is inferred as the union of all contributors in
// any key; a contributor never mentioned in any key cannot be discovered
// and is absent from the result.
//
// Absent coalitions are worth 0 by default; WithStrictLookup makes them an
// error. An empty mapping yields an empty allocation.
func Compute(values coalition.ValueMap, opts ...Option) (Allocation, error) {
	var c computation
	for _, opt := range opts {
		opt(&c)
	}

	universe := values.Universe()
	n := universe.Size()
	result := make(Allocation, n)
	if n == 0 {
		return result, nil
	}

	subsets, err := coalition.Subsets(universe)
	if err != nil {
		return nil, fmt.Errorf("enumerating universe %s: %w", universe, err)
	}

	// weights[s] = s!·(n−s−1)!/n!, built iteratively to stay in float64
	// range: w(0) = 1/n and w(s)/w(s−1) = s/(n−s).
	weights := make([]float64, n)
	weights[0] = 1 / float64(n)
	for s := 1; s < n; s++ {
		weights[s] = weights[s-1] * float64(s) / float64(n-s)
	}

	members := universe.Members()
	for _, m := range members {
		result[m] = 0
	}

	// Single pass over all subsets: each S contributes the marginal gain
	// v(S∪{i}) − v(S) to every contributor i outside S. This covers every
	// (i, S ⊆ N\{i}) pair exactly once.
	for sub := range subsets {
		if sub.Size() == n {
			continue // no contributor outside the full coalition
		}
		base, err := c.lookup(values, sub)
		if err != nil {
			return nil, err
		}
		w := weights[sub.Size()]
		for _, m := range members {
			if sub.Contains(m) {
				continue
			}
			joined, err := c.lookup(values, sub.With(m))
			if err != nil {
				return nil, err
			}
			result[m] += w * (joined - base)
		}
	}

	if c.normalize {
		total := result.Sum()
		if total == 0 {
			return nil, fmt.Errorf("cannot normalize allocation over %s: %w", universe, ErrDegenerateInput)
		}
		for m := range result {
			result[m] /= total
		}
	}

	return result, nil
}

// lookup resolves the value of a coalition under the configured
// missing-value policy. The empty coalition is worth 0 by convention in
// both modes.
func (c *computation) lookup(values coalition.ValueMap, sub coalition.Coalition) (float64, error) {
	if v, ok := values.Lookup(sub); ok {
		return v, nil
	}
	if c.strict && !sub.IsEmpty() {
		return 0, &MissingValueError{Coalition: sub}
	}
	return 0, nil
}
