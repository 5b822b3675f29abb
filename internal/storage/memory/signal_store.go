package memory

import (
	"context"
	"sort"
	"sync"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeSignal // keyed by signal_id
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.TradeSignal),
	}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.TradeSignal) error {
	if sig == nil || sig.SignalID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sig.SignalID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *sig
	s.data[sig.SignalID] = &cp
	return nil
}

// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
func (s *SignalStore) InsertBulk(_ context.Context, signals []*domain.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(signals))

	for _, sig := range signals {
		if sig == nil || sig.SignalID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[sig.SignalID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[sig.SignalID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[sig.SignalID] = struct{}{}
	}

	for _, sig := range signals {
		cp := *sig
		s.data[sig.SignalID] = &cp
	}

	return nil
}

// GetByMint retrieves all signals for a mint, ordered by created_at ASC.
func (s *SignalStore) GetByMint(_ context.Context, mint string) ([]*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeSignal
	for _, sig := range s.data {
		if sig.Mint == mint {
			cp := *sig
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// GetByStrategy retrieves all signals for a strategy, ordered by created_at ASC.
func (s *SignalStore) GetByStrategy(_ context.Context, strategy domain.Strategy) ([]*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeSignal
	for _, sig := range s.data {
		if sig.Strategy == strategy {
			cp := *sig
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
