package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// FeeDistributionStore implements storage.FeeDistributionStore using ClickHouse.
type FeeDistributionStore struct {
	conn *Conn
}

// NewFeeDistributionStore creates a new FeeDistributionStore.
func NewFeeDistributionStore(conn *Conn) *FeeDistributionStore {
	return &FeeDistributionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeeDistributionStore = (*FeeDistributionStore)(nil)

// Insert adds a new distribution. Returns ErrDuplicateKey if source_trade_id exists.
func (s *FeeDistributionStore) Insert(ctx context.Context, d *domain.FeeDistribution) error {
	if d == nil || d.SourceTradeID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, d.SourceTradeID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fee_distributions (
			source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		d.SourceTradeID, d.Timestamp, d.TotalFeeSOL,
		d.BotTradingSOL, d.InfrastructureSOL, d.DevelopmentSOL, d.BuilderSOL,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySourceTradeID retrieves the distribution for a trade. Returns ErrNotFound if not exists.
func (s *FeeDistributionStore) GetBySourceTradeID(ctx context.Context, tradeID string) (*domain.FeeDistribution, error) {
	query := `
		SELECT source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		FROM fee_distributions
		WHERE source_trade_id = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("get fee distribution by trade id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate fee distribution rows: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	d, err := scanFeeDistribution(rows)
	if err != nil {
		return nil, fmt.Errorf("scan fee distribution row: %w", err)
	}
	return d, nil
}

// GetByTimeRange retrieves distributions within [start, end] (inclusive), ordered by timestamp ASC.
func (s *FeeDistributionStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.FeeDistribution, error) {
	query := `
		SELECT source_trade_id, ts, total_fee_sol,
			bot_trading_sol, infrastructure_sol, development_sol, builder_sol
		FROM fee_distributions
		WHERE ts >= ? AND ts <= ?
		ORDER BY ts ASC, source_trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
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

type feeDistributionScanner interface {
	Scan(dest ...any) error
}

func scanFeeDistribution(row feeDistributionScanner) (*domain.FeeDistribution, error) {
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

// exists checks whether a source_trade_id is already stored.
func (s *FeeDistributionStore) exists(ctx context.Context, tradeID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM fee_distributions WHERE source_trade_id = ?`, tradeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
