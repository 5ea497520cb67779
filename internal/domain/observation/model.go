// Package observation accumulates observed contributor co-occurrence
// sequences into coalition statistics.
package observation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/fairshare/internal/domain/coalition"
	"github.com/okian/fairshare/pkg/metrics"
)

// Default model configuration constants.
const (
	defaultInitialCapacity = 1024
)

// Model converts a stream of observed contributor sequences into a
// coalition-value mapping where each coalition's value is its observation
// count.
//
// A Model starts empty, is mutated only through Absorb, and is read
// through Values/Frequencies/Universe. The count increment is a single
// critical section per call, so concurrent absorbs never lose updates.
type Model struct {
	mu           sync.RWMutex
	counts       map[coalition.Key]int64
	universe     map[string]struct{}
	observations int64
}

// NewModel creates an empty model with configuration options.
func NewModel(opts ...Option) *Model {
	m := &Model{
		counts:   make(map[coalition.Key]int64, defaultInitialCapacity),
		universe: make(map[string]struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Absorb records one observation: the canonical coalition formed from the
// deduplicated identifiers in sequence has its count incremented by 1.
// Empty sequences are a no-op; previously unseen contributors simply
// extend the universe. Absorb is intentionally not idempotent — each call
// represents one more observation.
//
// The absorbed coalition is returned for logging.
func (m *Model) Absorb(ctx context.Context, sequence []string) coalition.Coalition {
	start := time.Now()
	defer func() {
		metrics.RecordAbsorbLatency(float64(time.Since(start).Milliseconds()))
	}()

	c := coalition.New(sequence...)
	if c.IsEmpty() {
		return c
	}

	m.mu.Lock()
	m.counts[c.Key()]++
	for _, id := range c.Members() {
		m.universe[id] = struct{}{}
	}
	m.observations++
	coalitions, members := len(m.counts), len(m.universe)
	m.mu.Unlock()

	metrics.RecordObservationAbsorbed()
	metrics.UpdateModelCoalitions(coalitions)
	metrics.UpdateUniverseSize(members)

	return c
}

// Count returns the current observation count for a coalition. Coalitions
// never absorbed report 0.
func (m *Model) Count(c coalition.Coalition) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[c.Key()]
}

// Values materializes the current state as a coalition-value mapping.
// Every coalition ever absorbed appears as a key; coalitions never
// absorbed are absent, not zero — downstream consumers decide how to
// treat missing keys.
func (m *Model) Values() coalition.ValueMap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(coalition.ValueMap, len(m.counts))
	for k, n := range m.counts {
		out[k] = float64(n)
	}
	return out
}

// Frequencies is a derived view of Values with counts normalized to sum
// to 1. An empty model yields an empty mapping.
func (m *Model) Frequencies() coalition.ValueMap {
	values := m.Values()

	var total float64
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return values
	}
	for k := range values {
		values[k] /= total
	}
	return values
}

// Universe returns the set of all contributors seen in any absorbed
// observation.
func (m *Model) Universe() coalition.Coalition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]string, 0, len(m.universe))
	for id := range m.universe {
		members = append(members, id)
	}
	sort.Strings(members)
	return coalition.New(members...)
}

// Len returns the number of distinct coalitions observed so far.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.counts)
}

// Observations returns the total number of absorbed observations.
func (m *Model) Observations() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.observations
}
