package memory

import (
	"fmt"
	"testing"

	"maily/backend/internal/domain"
)

func BenchmarkMemoryStore_FindOrCreateSubscription(b *testing.B) {
	store := NewStore()
	seq := &domain.Sequence{ID: "seq-1", Name: "newsletters", Autosubscribe: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sub := domain.NewStandaloneSubscription(fmt.Sprintf("sub-%d", i), fmt.Sprintf("user-%d", i%1000), seq)
		store.FindOrCreateSubscription(sub)
	}
}

func BenchmarkMemoryStore_GetAggregateByID(b *testing.B) {
	store := NewStore()
	group := &domain.SubscriptionGroup{ID: "grp-1", Name: "marketing"}

	for i := 0; i < 1000; i++ {
		store.FindOrCreateAggregate(domain.NewAggregatedSubscription(fmt.Sprintf("agg-%d", i), fmt.Sprintf("user-%d", i), group))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.GetAggregateByID(fmt.Sprintf("agg-%d", i%1000))
	}
}
