package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/storage"
)

// SignalStore implements storage.SignalStore using ClickHouse.
//
// ClickHouse MergeTree does not enforce uniqueness at insert time, so
// duplicates are detected with an explicit existence check before insert.
type SignalStore struct {
	conn *Conn
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(conn *Conn) *SignalStore {
	return &SignalStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.TradeSignal) error {
	return s.InsertBulk(ctx, []*domain.TradeSignal{sig})
}

// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
func (s *SignalStore) InsertBulk(ctx context.Context, signals []*domain.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(signals))
	for _, sig := range signals {
		if sig == nil || sig.SignalID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[sig.SignalID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sig.SignalID] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, sig := range signals {
		exists, err := s.exists(ctx, sig.SignalID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_signals (
			signal_id, mint, symbol, action, confidence, amount_sol,
			stop_loss_pct, take_profit_pct, risk, strategy, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sig := range signals {
		err = batch.Append(
			sig.SignalID, sig.Mint, sig.Symbol, string(sig.Action),
			sig.Confidence, sig.AmountSOL,
			sig.StopLossPct, sig.TakeProfitPct, string(sig.Risk),
			string(sig.Strategy), sig.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all signals for a mint, ordered by created_at ASC.
func (s *SignalStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeSignal, error) {
	query := `
		SELECT signal_id, mint, symbol, action, confidence, amount_sol,
			stop_loss_pct, take_profit_pct, risk, strategy, created_at
		FROM trade_signals
		WHERE mint = ?
		ORDER BY created_at ASC, signal_id ASC
	`
	return s.querySignals(ctx, query, mint)
}

// GetByStrategy retrieves all signals for a strategy, ordered by created_at ASC.
func (s *SignalStore) GetByStrategy(ctx context.Context, strategy domain.Strategy) ([]*domain.TradeSignal, error) {
	query := `
		SELECT signal_id, mint, symbol, action, confidence, amount_sol,
			stop_loss_pct, take_profit_pct, risk, strategy, created_at
		FROM trade_signals
		WHERE strategy = ?
		ORDER BY created_at ASC, signal_id ASC
	`
	return s.querySignals(ctx, query, string(strategy))
}

func (s *SignalStore) querySignals(ctx context.Context, query string, args ...any) ([]*domain.TradeSignal, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade signals: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeSignal
	for rows.Next() {
		var sig domain.TradeSignal
		var action, risk, strategy string
		var createdAt time.Time

		err := rows.Scan(
			&sig.SignalID, &sig.Mint, &sig.Symbol, &action,
			&sig.Confidence, &sig.AmountSOL,
			&sig.StopLossPct, &sig.TakeProfitPct, &risk, &strategy, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade signal row: %w", err)
		}
		sig.Action = domain.TradeAction(action)
		sig.Risk = domain.RiskTier(risk)
		sig.Strategy = domain.Strategy(strategy)
		sig.CreatedAt = createdAt

		result = append(result, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade signal rows: %w", err)
	}

	return result, nil
}

// exists checks whether a signal_id is already stored.
func (s *SignalStore) exists(ctx context.Context, signalID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM trade_signals WHERE signal_id = ?`, signalID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
