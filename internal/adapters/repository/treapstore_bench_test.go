package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/fairshare/internal/domain/model"
)

func benchmarkShares(n int) []model.Share {
	shares := make([]model.Share, n)
	for i := range shares {
		shares[i] = model.Share{
			Contributor: fmt.Sprintf("contrib-%06d", i),
			Value:       float64(i%997) / 997,
		}
	}
	return shares
}

func BenchmarkTreapStore_Publish(b *testing.B) {
	ctx := context.Background()
	shares := benchmarkShares(10_000)

	store := NewTreapStore(WithRandSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := store.Publish(ctx, shares); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTreapStore_TopN(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))
	if err := store.Publish(ctx, benchmarkShares(10_000)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.TopN(ctx, 100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTreapStore_Rank(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithRandSource(1))
	if err := store.Publish(ctx, benchmarkShares(10_000)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Rank(ctx, fmt.Sprintf("contrib-%06d", i%10_000)); err != nil {
			b.Fatal(err)
		}
	}
}
