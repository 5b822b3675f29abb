package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// TreasurySnapshotStore is an in-memory implementation of storage.TreasurySnapshotStore.
type TreasurySnapshotStore struct {
	mu   sync.RWMutex
	data map[time.Time]*domain.TreasurySnapshot // keyed by timestamp
}

// NewTreasurySnapshotStore creates a new in-memory treasury snapshot store.
func NewTreasurySnapshotStore() *TreasurySnapshotStore {
	return &TreasurySnapshotStore{
		data: make(map[time.Time]*domain.TreasurySnapshot),
	}
}

// Compile-time interface check.
var _ storage.TreasurySnapshotStore = (*TreasurySnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if timestamp exists.
func (s *TreasurySnapshotStore) Insert(_ context.Context, snap *domain.TreasurySnapshot) error {
	if snap == nil || snap.Timestamp.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.Timestamp]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *snap
	s.data[snap.Timestamp] = &cp
	return nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if none exist.
func (s *TreasurySnapshotStore) GetLatest(_ context.Context) (*domain.TreasurySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.TreasurySnapshot
	for _, snap := range s.data {
		if latest == nil || snap.Timestamp.After(latest.Timestamp) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	cp := *latest
	return &cp, nil
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TreasurySnapshotStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.TreasurySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TreasurySnapshot
	for _, snap := range s.data {
		if !snap.Timestamp.Before(start) && !snap.Timestamp.After(end) {
			cp := *snap
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}
