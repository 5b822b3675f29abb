package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// AgentSnapshotStore implements storage.AgentSnapshotStore using PostgreSQL.
type AgentSnapshotStore struct {
	pool *Pool
}

// NewAgentSnapshotStore creates a new AgentSnapshotStore.
func NewAgentSnapshotStore(pool *Pool) *AgentSnapshotStore {
	return &AgentSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AgentSnapshotStore = (*AgentSnapshotStore)(nil)

const agentSnapshotInsert = `
	INSERT INTO agent_snapshots (
		agent_id, ts, name, strategy, status,
		allocated_sol, balance_sol, pnl_sol, roi_pct, win_rate, trades
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const agentSnapshotColumns = `
	agent_id, ts, name, strategy, status,
	allocated_sol, balance_sol, pnl_sol, roi_pct, win_rate, trades
`

// Insert adds a new snapshot. Returns ErrDuplicateKey if (agent_id, timestamp) exists.
func (s *AgentSnapshotStore) Insert(ctx context.Context, snap *domain.AgentSnapshot) error {
	_, err := s.pool.Exec(ctx, agentSnapshotInsert,
		snap.AgentID, snap.Timestamp, snap.Name, string(snap.Strategy), string(snap.Status),
		snap.AllocatedSOL, snap.BalanceSOL, snap.PnLSOL, snap.ROIPct, snap.WinRate, snap.Trades,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert agent snapshot: %w", err)
	}
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AgentSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.AgentSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, snap := range snapshots {
		_, err := tx.Exec(ctx, agentSnapshotInsert,
			snap.AgentID, snap.Timestamp, snap.Name, string(snap.Strategy), string(snap.Status),
			snap.AllocatedSOL, snap.BalanceSOL, snap.PnLSOL, snap.ROIPct, snap.WinRate, snap.Trades,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert agent snapshot in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByAgentID retrieves all snapshots for an agent, ordered by timestamp ASC.
func (s *AgentSnapshotStore) GetByAgentID(ctx context.Context, agentID string) ([]*domain.AgentSnapshot, error) {
	query := `
		SELECT ` + agentSnapshotColumns + `
		FROM agent_snapshots
		WHERE agent_id = $1
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent snapshots by agent id: %w", err)
	}
	defer rows.Close()

	return scanAgentSnapshots(rows)
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive), ordered by timestamp ASC.
func (s *AgentSnapshotStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.AgentSnapshot, error) {
	query := `
		SELECT ` + agentSnapshotColumns + `
		FROM agent_snapshots
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC, agent_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get agent snapshots by time range: %w", err)
	}
	defer rows.Close()

	return scanAgentSnapshots(rows)
}

// scanAgentSnapshots scans multiple rows into a slice of AgentSnapshot.
func scanAgentSnapshots(rows pgx.Rows) ([]*domain.AgentSnapshot, error) {
	var result []*domain.AgentSnapshot

	for rows.Next() {
		var snap domain.AgentSnapshot
		var strategy, status string

		err := rows.Scan(
			&snap.AgentID, &snap.Timestamp, &snap.Name, &strategy, &status,
			&snap.AllocatedSOL, &snap.BalanceSOL, &snap.PnLSOL, &snap.ROIPct, &snap.WinRate, &snap.Trades,
		)
		if err != nil {
			return nil, fmt.Errorf("scan agent snapshot row: %w", err)
		}
		snap.Strategy = domain.Strategy(strategy)
		snap.Status = domain.AgentStatus(status)

		result = append(result, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent snapshot rows: %w", err)
	}

	return result, nil
}
