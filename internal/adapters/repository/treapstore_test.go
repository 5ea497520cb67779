package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/okian/fairshare/internal/domain/model"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-10
	return math.Abs(a-b) < tolerance
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	// Test empty store
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	shares := []model.Share{
		{Contributor: "alice", Value: 17.5, Fraction: 0.4375},
		{Contributor: "bob", Value: 22.5, Fraction: 0.5625},
	}
	if err := store.Publish(ctx, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	// Test rank query
	entry, err := store.Rank(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 {
		t.Errorf("expected rank 1, got %d", entry.Rank)
	}
	if !floatEqual(entry.Value, 22.5) {
		t.Errorf("expected value 22.5, got %f", entry.Value)
	}
	if !floatEqual(entry.Fraction, 0.5625) {
		t.Errorf("expected fraction 0.5625, got %f", entry.Fraction)
	}

	entry, err = store.Rank(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 {
		t.Errorf("expected rank 2, got %d", entry.Rank)
	}

	// Test TopN
	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Contributor != "bob" || entries[1].Contributor != "alice" {
		t.Errorf("unexpected order: %v", entries)
	}
}

func TestTreapStore_PublishReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	first := []model.Share{
		{Contributor: "alice", Value: 10},
		{Contributor: "bob", Value: 5},
		{Contributor: "carol", Value: 1},
	}
	if err := store.Publish(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Values move down as well as up between recomputes, and contributors
	// can disappear entirely.
	second := []model.Share{
		{Contributor: "alice", Value: 2},
		{Contributor: "bob", Value: 8},
	}
	if err := store.Publish(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2 after replace, got %d", count)
	}

	if _, err := store.Rank(ctx, "carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for removed contributor, got %v", err)
	}

	entry, err := store.Rank(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 {
		t.Errorf("expected alice demoted to rank 2, got %d", entry.Rank)
	}
	if !floatEqual(entry.Value, 2) {
		t.Errorf("expected value 2, got %f", entry.Value)
	}
}

func TestTreapStore_Ties(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	shares := []model.Share{
		{Contributor: "alice", Value: 10},
		{Contributor: "bob", Value: 10},
		{Contributor: "carol", Value: 4},
	}
	if err := store.Publish(ctx, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tied contributors share a rank; the next distinct value gets the
	// next consecutive rank.
	for _, id := range []string{"alice", "bob"} {
		entry, err := store.Rank(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Rank != 1 {
			t.Errorf("expected %s at rank 1, got %d", id, entry.Rank)
		}
	}

	entry, err := store.Rank(ctx, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 {
		t.Errorf("expected carol at rank 2, got %d", entry.Rank)
	}

	// Ties are ordered deterministically by contributor id.
	entries, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Contributor != "alice" || entries[1].Contributor != "bob" {
		t.Errorf("unexpected tie order: %v", entries)
	}
}

func TestTreapStore_TopNLimits(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	shares := make([]model.Share, 10)
	for i := range shares {
		shares[i] = model.Share{Contributor: fmt.Sprintf("c-%02d", i), Value: float64(i)}
	}
	if err := store.Publish(ctx, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Contributor != "c-09" {
		t.Errorf("expected c-09 first, got %s", entries[0].Contributor)
	}

	// Limit larger than the store returns everything
	entries, err = store.TopN(ctx, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 entries, got %d", len(entries))
	}

	// Non-positive limits are rejected
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapStore_EmptyQueries(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	if _, err := store.Rank(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	entries, err := store.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))

	shares := make([]model.Share, 50)
	for i := range shares {
		shares[i] = model.Share{Contributor: fmt.Sprintf("c-%02d", i), Value: float64(i)}
	}
	if err := store.Publish(ctx, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := store.TopN(ctx, 10); err != nil {
					t.Errorf("TopN failed: %v", err)
					return
				}
				if _, err := store.Rank(ctx, fmt.Sprintf("c-%02d", i%50)); err != nil {
					t.Errorf("Rank failed: %v", err)
					return
				}
			}
		}()
	}

	// Concurrent republishing
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := store.Publish(ctx, shares); err != nil {
				t.Errorf("Publish failed: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}
