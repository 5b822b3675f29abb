package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// FeeDistributionStore implements storage.FeeDistributionStore using PostgreSQL.
type FeeDistributionStore struct {
	pool *Pool
}

// NewFeeDistributionStore creates a new FeeDistributionStore.
func NewFeeDistributionStore(pool *Pool) *FeeDistributionStore {
	return &FeeDistributionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeeDistributionStore = (*FeeDistributionStore)(nil)

// Insert adds a new distribution. Returns ErrDuplicateKey if source_trade_id exists.
func (s *FeeDistributionStore) Insert(ctx context.Context, d *domain.FeeDistribution) error {
	query := `
		INSERT INTO fee_distributions (
			source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		d.SourceTradeID, d.Timestamp, d.TotalFeeSOL,
		d.BotTradingSOL, d.InfrastructureSOL, d.DevelopmentSOL, d.BuilderSOL,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert fee distribution: %w", err)
	}
	return nil
}

// GetBySourceTradeID retrieves the distribution for a trade. Returns ErrNotFound if not exists.
func (s *FeeDistributionStore) GetBySourceTradeID(ctx context.Context, tradeID string) (*domain.FeeDistribution, error) {
	query := `
		SELECT source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		FROM fee_distributions
		WHERE source_trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	d, err := scanFeeDistribution(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fee distribution by trade id: %w", err)
	}
	return d, nil
}

// GetByTimeRange retrieves distributions within [start, end] (inclusive), ordered by timestamp ASC.
func (s *FeeDistributionStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.FeeDistribution, error) {
	query := `
		SELECT source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		FROM fee_distributions
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC, source_trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get fee distributions by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.FeeDistribution
	for rows.Next() {
		d, err := scanFeeDistribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fee distribution row: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee distribution rows: %w", err)
	}

	return result, nil
}

// scanFeeDistribution scans a single row into a FeeDistribution.
func scanFeeDistribution(row pgx.Row) (*domain.FeeDistribution, error) {
	var d domain.FeeDistribution
	err := row.Scan(
		&d.SourceTradeID, &d.Timestamp, &d.TotalFeeSOL,
		&d.BotTradingSOL, &d.InfrastructureSOL, &d.DevelopmentSOL, &d.BuilderSOL,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
