package storage

import (
	"context"
	"time"

	"solana-agent-swarm/internal/domain"
)

// FeeDistributionStore provides access to fee_distributions storage.
type FeeDistributionStore interface {
	// Insert adds a new distribution. Returns ErrDuplicateKey if source_trade_id exists.
	Insert(ctx context.Context, d *domain.FeeDistribution) error

	// GetBySourceTradeID retrieves the distribution for a trade. Returns ErrNotFound if not exists.
	GetBySourceTradeID(ctx context.Context, tradeID string) (*domain.FeeDistribution, error)

	// GetByTimeRange retrieves distributions within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.FeeDistribution, error)
}

// SignalStore provides access to trade_signals storage.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
	Insert(ctx context.Context, s *domain.TradeSignal) error

	// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, signals []*domain.TradeSignal) error

	// GetByMint retrieves all signals for a mint, ordered by created_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.TradeSignal, error)

	// GetByStrategy retrieves all signals for a strategy, ordered by created_at ASC.
	GetByStrategy(ctx context.Context, strategy domain.Strategy) ([]*domain.TradeSignal, error)
}

// AgentSnapshotStore provides access to agent_snapshots storage.
type AgentSnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if (agent_id, timestamp) exists.
	Insert(ctx context.Context, s *domain.AgentSnapshot) error

	// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, snapshots []*domain.AgentSnapshot) error

	// GetByAgentID retrieves all snapshots for an agent, ordered by timestamp ASC.
	GetByAgentID(ctx context.Context, agentID string) ([]*domain.AgentSnapshot, error)

	// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.AgentSnapshot, error)
}

// TreasurySnapshotStore provides access to treasury_snapshots storage.
type TreasurySnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if timestamp exists.
	Insert(ctx context.Context, s *domain.TreasurySnapshot) error

	// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if none exist.
	GetLatest(ctx context.Context) (*domain.TreasurySnapshot, error)

	// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.TreasurySnapshot, error)
}
