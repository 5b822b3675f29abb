package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

type agentSnapshotKey struct {
	agentID   string
	timestamp time.Time
}

// AgentSnapshotStore is an in-memory implementation of storage.AgentSnapshotStore.
type AgentSnapshotStore struct {
	mu   sync.RWMutex
	data map[agentSnapshotKey]*domain.AgentSnapshot
}

// NewAgentSnapshotStore creates a new in-memory agent snapshot store.
func NewAgentSnapshotStore() *AgentSnapshotStore {
	return &AgentSnapshotStore{
		data: make(map[agentSnapshotKey]*domain.AgentSnapshot),
	}
}

// Compile-time interface check.
var _ storage.AgentSnapshotStore = (*AgentSnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if (agent_id, timestamp) exists.
func (s *AgentSnapshotStore) Insert(_ context.Context, snap *domain.AgentSnapshot) error {
	if snap == nil || snap.AgentID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := agentSnapshotKey{snap.AgentID, snap.Timestamp}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *snap
	s.data[k] = &cp
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AgentSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.AgentSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[agentSnapshotKey]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.AgentID == "" {
			return storage.ErrInvalidInput
		}
		k := agentSnapshotKey{snap.AgentID, snap.Timestamp}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, snap := range snapshots {
		cp := *snap
		s.data[agentSnapshotKey{snap.AgentID, snap.Timestamp}] = &cp
	}

	return nil
}

// GetByAgentID retrieves all snapshots for an agent, ordered by timestamp ASC.
func (s *AgentSnapshotStore) GetByAgentID(_ context.Context, agentID string) ([]*domain.AgentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AgentSnapshot
	for _, snap := range s.data {
		if snap.AgentID == agentID {
			cp := *snap
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
func (s *AgentSnapshotStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.AgentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AgentSnapshot
	for _, snap := range s.data {
		if !snap.Timestamp.Before(start) && !snap.Timestamp.After(end) {
			cp := *snap
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].AgentID < result[j].AgentID
		}
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}
