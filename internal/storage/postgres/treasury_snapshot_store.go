package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// TreasurySnapshotStore implements storage.TreasurySnapshotStore using PostgreSQL.
type TreasurySnapshotStore struct {
	pool *Pool
}

// NewTreasurySnapshotStore creates a new TreasurySnapshotStore.
func NewTreasurySnapshotStore(pool *Pool) *TreasurySnapshotStore {
	return &TreasurySnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TreasurySnapshotStore = (*TreasurySnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if timestamp exists.
func (s *TreasurySnapshotStore) Insert(ctx context.Context, snap *domain.TreasurySnapshot) error {
	query := `
		INSERT INTO treasury_snapshots (
			ts, available_sol, allocated_sol, realized_pnl,
			agent_count, utilization_pct, aggregate_roi
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		snap.Timestamp, snap.AvailableSOL, snap.AllocatedSOL, snap.RealizedPnL,
		snap.AgentCount, snap.UtilizationPct, snap.AggregateROI,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert treasury snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if none exist.
func (s *TreasurySnapshotStore) GetLatest(ctx context.Context) (*domain.TreasurySnapshot, error) {
	query := `
		SELECT ts, available_sol, allocated_sol, realized_pnl,
			agent_count, utilization_pct, aggregate_roi
		FROM treasury_snapshots
		ORDER BY ts DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query)
	snap, err := scanTreasurySnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest treasury snapshot: %w", err)
	}
	return snap, nil
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TreasurySnapshotStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.TreasurySnapshot, error) {
	query := `
		SELECT ts, available_sol, allocated_sol, realized_pnl,
			agent_count, utilization_pct, aggregate_roi
		FROM treasury_snapshots
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get treasury snapshots by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.TreasurySnapshot
	for rows.Next() {
		snap, err := scanTreasurySnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan treasury snapshot row: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate treasury snapshot rows: %w", err)
	}

	return result, nil
}

// scanTreasurySnapshot scans a single row into a TreasurySnapshot.
func scanTreasurySnapshot(row pgx.Row) (*domain.TreasurySnapshot, error) {
	var snap domain.TreasurySnapshot
	err := row.Scan(
		&snap.Timestamp, &snap.AvailableSOL, &snap.AllocatedSOL, &snap.RealizedPnL,
		&snap.AgentCount, &snap.UtilizationPct, &snap.AggregateROI,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
