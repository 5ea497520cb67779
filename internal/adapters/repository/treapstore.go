package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/fairshare/internal/domain/model"
	"github.com/okian/fairshare/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: value DESC, then contributor ASC (deterministic). The BST
// comparator treats "less" as "ranks earlier", so in-order traversal
// produces the allocation from largest share to smallest.

// valueScale controls fixed-point scaling from float64. Shapley values in
// practice are small reals; 12 decimal places keep ordering stable across
// recomputes.
const valueScale = 1_000_000_000_000

type valueFP int64

func toFixedPoint(x float64) valueFP {
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return valueFP(math.MaxInt64)
	}
	if math.IsInf(x, -1) {
		return valueFP(math.MinInt64)
	}
	scaled := x * valueScale
	if scaled > float64(math.MaxInt64) {
		return valueFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return valueFP(math.MinInt64)
	}
	return valueFP(math.Round(scaled))
}

// record stores the fixed-point value plus the fraction for a contributor.
type record struct {
	value    valueFP
	raw      float64
	fraction float64
}

// treap node
type node struct {
	id    string
	value valueFP
	prio  uint64
	left  *node
	right *node
}

// less returns true if (aValue, aID) should appear before (bValue, bID)
// in the allocation (larger shares first).
func less(aValue valueFP, aID string, bValue valueFP, bID string) bool {
	if aValue != bValue {
		return aValue > bValue // larger value ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func insert(n *node, id string, value valueFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, value: value, prio: prio}
	}
	if less(value, id, n.value, n.id) {
		n.left = insert(n.left, id, value, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, value, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

// collectTopN appends up to limit entries in rank order (largest first).
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.id]; ok {
			*out = append(*out, Entry{Contributor: n.id, Value: rec.raw, Fraction: rec.fraction})
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// collectAll appends all entries in rank order (largest first).
func collectAll(n *node, records map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, records, out)
	if rec, ok := records[n.id]; ok {
		*out = append(*out, Entry{Contributor: n.id, Value: rec.raw, Fraction: rec.fraction})
	}
	collectAll(n.right, records, out)
}

// assignRanksWithTies assigns consecutive ranks; contributors with equal
// values share a rank. Input must already be in rank order.
func assignRanksWithTies(entries []Entry) {
	currentRank := 1
	for i := 0; i < len(entries); {
		entries[i].Rank = currentRank
		j := i + 1
		for j < len(entries) && entries[j].Value == entries[i].Value {
			entries[j].Rank = currentRank
			j++
		}
		currentRank++
		i = j
	}
}

// TreapStore is the default Store implementation.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs an empty treap store with configuration
// options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap balance, not security-sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish implements Store.Publish by rebuilding the treap from shares.
func (s *TreapStore) Publish(ctx context.Context, shares []model.Share) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	s.root = nil
	s.byID = make(map[string]record, len(shares))
	for _, sh := range shares {
		fp := toFixedPoint(sh.Value)
		s.byID[sh.Contributor] = record{value: fp, raw: sh.Value, fraction: sh.Fraction}
		s.root = insert(s.root, sh.Contributor, fp, s.rng.Uint64())
	}
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoreContributors(count)
	return nil
}

// Rank returns the current rank and share for a contributor.
func (s *TreapStore) Rank(ctx context.Context, contributor string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[contributor]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	// In-order traversal is already rank order; assign tie-aware ranks
	// and pick out the requested contributor.
	all := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &all)
	assignRanksWithTies(all)

	for _, e := range all {
		if e.Contributor == contributor {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by value desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of contributors in the allocation.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
