package coalition

import (
	"fmt"
	"iter"
)

// MaxEnumerable bounds the number of free members a single enumeration may
// range over. Bitmask enumeration uses one bit per member, and exact
// Shapley computation is unusable far below this bound anyway.
const MaxEnumerable = 63

// ProperSubsets returns a lazy sequence of every subset of c strictly
// smaller than c itself, including the empty coalition. The sequence has
// 2^k − 1 elements for a coalition of size k and is emitted in ascending
// bitmask order over the canonical member ordering.
func ProperSubsets(c Coalition) (iter.Seq[Coalition], error) {
	return enumerate(c, false)
}

// Subsets returns a lazy sequence of every subset of c, including c
// itself. The sequence has 2^k elements.
func Subsets(c Coalition) (iter.Seq[Coalition], error) {
	return enumerate(c, true)
}

// Supersets returns a lazy sequence of every coalition S with
// c ⊆ S ⊆ universe. The sequence has 2^(|universe|−|c|) elements.
// Returns ErrNotSubset when c is not contained in universe.
func Supersets(c, universe Coalition) (iter.Seq[Coalition], error) {
	if !universe.ContainsAll(c) {
		return nil, fmt.Errorf("supersets of %s within %s: %w", c, universe, ErrNotSubset)
	}

	// The free members are those of the universe not already in c. Each
	// bitmask over the free members selects one superset.
	free := make([]string, 0, universe.Size()-c.Size())
	for _, m := range universe.members {
		if !c.Contains(m) {
			free = append(free, m)
		}
	}
	if len(free) > MaxEnumerable {
		return nil, fmt.Errorf("%d free members: %w", len(free), ErrUniverseTooLarge)
	}

	return func(yield func(Coalition) bool) {
		total := uint64(1) << uint(len(free))
		for mask := uint64(0); mask < total; mask++ {
			if !yield(c.Union(pick(free, mask))) {
				return
			}
		}
	}, nil
}

// enumerate walks bitmasks 0..2^k−1 over the canonical member ordering.
// Every mask selects a distinct subset, so the enumeration is
// deterministic, duplicate-free, and non-recursive.
func enumerate(c Coalition, includeSelf bool) (iter.Seq[Coalition], error) {
	if c.Size() > MaxEnumerable {
		return nil, fmt.Errorf("coalition of size %d: %w", c.Size(), ErrUniverseTooLarge)
	}
	members := c.members
	return func(yield func(Coalition) bool) {
		total := uint64(1) << uint(len(members))
		last := total
		if !includeSelf {
			last = total - 1 // skip the full mask
		}
		for mask := uint64(0); mask < last; mask++ {
			if !yield(pick(members, mask)) {
				return
			}
		}
	}, nil
}

// pick selects the members whose bit is set in mask. Input is sorted, so
// the result is already canonical.
func pick(members []string, mask uint64) Coalition {
	if mask == 0 {
		return Coalition{}
	}
	out := make([]string, 0, len(members))
	for i, m := range members {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, m)
		}
	}
	return fromSorted(out)
}
