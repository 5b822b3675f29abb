package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

func createTestDistribution(tradeID string, ts time.Time) *domain.FeeDistribution {
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

func TestFeeDistributionStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFeeDistributionStore(pool)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, createTestDistribution("trade-001", ts))
	require.NoError(t, err)

	retrieved, err := store.GetBySourceTradeID(ctx, "trade-001")
	require.NoError(t, err)

	assert.Equal(t, "trade-001", retrieved.SourceTradeID)
	assert.InDelta(t, 0.02, retrieved.TotalFeeSOL, 1e-9)
	assert.InDelta(t, 0.005, retrieved.BotTradingSOL, 1e-9)
	assert.True(t, retrieved.Timestamp.Equal(ts))
}

func TestFeeDistributionStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFeeDistributionStore(pool)
	ts := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, createTestDistribution("trade-001", ts)))

	err := store.Insert(ctx, createTestDistribution("trade-001", ts))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestFeeDistributionStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFeeDistributionStore(pool)

	_, err := store.GetBySourceTradeID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeeDistributionStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFeeDistributionStore(pool)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, store.Insert(ctx, createTestDistribution(id, base.Add(time.Duration(i)*time.Hour))))
	}

	result, err := store.GetByTimeRange(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "t1", result[0].SourceTradeID)
	assert.Equal(t, "t2", result[1].SourceTradeID)
}
