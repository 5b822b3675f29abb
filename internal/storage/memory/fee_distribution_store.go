// Package memory provides in-memory store implementations, used in tests
// and for runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// FeeDistributionStore is an in-memory implementation of storage.FeeDistributionStore.
type FeeDistributionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeeDistribution // keyed by source_trade_id
}

// NewFeeDistributionStore creates a new in-memory fee distribution store.
func NewFeeDistributionStore() *FeeDistributionStore {
	return &FeeDistributionStore{
		data: make(map[string]*domain.FeeDistribution),
	}
}

// Compile-time interface check.
var _ storage.FeeDistributionStore = (*FeeDistributionStore)(nil)

// Insert adds a new distribution. Returns ErrDuplicateKey if source_trade_id exists.
func (s *FeeDistributionStore) Insert(_ context.Context, d *domain.FeeDistribution) error {
	if d == nil || d.SourceTradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[d.SourceTradeID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *d
	s.data[d.SourceTradeID] = &cp
	return nil
}

// GetBySourceTradeID retrieves the distribution for a trade. Returns ErrNotFound if not exists.
func (s *FeeDistributionStore) GetBySourceTradeID(_ context.Context, tradeID string) (*domain.FeeDistribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *d
	return &cp, nil
}

// GetByTimeRange retrieves distributions within [start, end] (inclusive), ordered by timestamp ASC.
func (s *FeeDistributionStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.FeeDistribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeeDistribution
	for _, d := range s.data {
		if !d.Timestamp.Before(start) && !d.Timestamp.After(end) {
			cp := *d
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}
