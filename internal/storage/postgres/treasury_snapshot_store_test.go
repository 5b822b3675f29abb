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

func createTestTreasurySnapshot(ts time.Time, available float64) *domain.TreasurySnapshot {
	return &domain.TreasurySnapshot{
		Timestamp:      ts,
		AvailableSOL:   available,
		AllocatedSOL:   0.5,
		RealizedPnL:    0.1,
		AgentCount:     10,
		UtilizationPct: 33.3,
		AggregateROI:   6.7,
	}
}

func TestTreasurySnapshotStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTreasurySnapshotStore(pool)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.GetLatest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Insert(ctx, createTestTreasurySnapshot(base, 1.0)))
	require.NoError(t, store.Insert(ctx, createTestTreasurySnapshot(base.Add(time.Hour), 2.0)))

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, latest.AvailableSOL, 1e-9)
	assert.Equal(t, 10, latest.AgentCount)
}

func TestTreasurySnapshotStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTreasurySnapshotStore(pool)
	ts := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, createTestTreasurySnapshot(ts, 1.0)))

	err := store.Insert(ctx, createTestTreasurySnapshot(ts, 2.0))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTreasurySnapshotStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTreasurySnapshotStore(pool)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Insert(ctx, createTestTreasurySnapshot(base.Add(time.Duration(i)*time.Hour), float64(i))))
	}

	result, err := store.GetByTimeRange(ctx, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.InDelta(t, 1.0, result[0].AvailableSOL, 1e-9)
	assert.InDelta(t, 2.0, result[1].AvailableSOL, 1e-9)
}
