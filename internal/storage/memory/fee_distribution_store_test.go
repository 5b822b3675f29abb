package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

func testDistribution(tradeID string, ts time.Time) *domain.FeeDistribution {
	return &domain.FeeDistribution{
		Timestamp:         ts,
		TotalFeeSOL:       0.02,
		BotTradingSOL:     0.005,
		InfrastructureSOL: 0.005,
		DevelopmentSOL:    0.005,
		BuilderSOL:        0.005,
		SourceTradeID:     tradeID,
	}
}

func TestFeeDistributionStoreInsertAndGet(t *testing.T) {
	s := NewFeeDistributionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	d := testDistribution("trade-1", now)
	if err := s.Insert(ctx, d); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.GetBySourceTradeID(ctx, "trade-1")
	if err != nil {
		t.Fatalf("GetBySourceTradeID: %v", err)
	}
	if got.TotalFeeSOL != 0.02 {
		t.Fatalf("fee = %v, want 0.02", got.TotalFeeSOL)
	}

	// Returned value is a copy; mutating it must not affect the store.
	got.TotalFeeSOL = 99
	again, _ := s.GetBySourceTradeID(ctx, "trade-1")
	if again.TotalFeeSOL != 0.02 {
		t.Fatal("store data mutated through returned copy")
	}
}

func TestFeeDistributionStoreDuplicate(t *testing.T) {
	s := NewFeeDistributionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Insert(ctx, testDistribution("trade-1", now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, testDistribution("trade-1", now)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("duplicate insert: got %v, want ErrDuplicateKey", err)
	}
}

func TestFeeDistributionStoreInvalidInput(t *testing.T) {
	s := NewFeeDistributionStore()
	ctx := context.Background()

	if err := s.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("nil insert: got %v, want ErrInvalidInput", err)
	}
	if err := s.Insert(ctx, &domain.FeeDistribution{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("empty trade id: got %v, want ErrInvalidInput", err)
	}
	if _, err := s.GetBySourceTradeID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing get: got %v, want ErrNotFound", err)
	}
}

func TestFeeDistributionStoreTimeRange(t *testing.T) {
	s := NewFeeDistributionStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"t1", "t2", "t3"} {
		if err := s.Insert(ctx, testDistribution(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}

	got, err := s.GetByTimeRange(ctx, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (range is inclusive)", len(got))
	}
	if got[0].SourceTradeID != "t1" || got[1].SourceTradeID != "t2" {
		t.Fatalf("order = %s, %s, want t1, t2", got[0].SourceTradeID, got[1].SourceTradeID)
	}
}
