package feeds

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"solana-agent-swarm/internal/domain"
)

// SimExecutor is a paper-trading executor. Buys open a tracked position;
// sells close it and realize a pseudo-random P&L shaped by the signal's
// confidence and stop/take-profit bounds. No funds move anywhere.
type SimExecutor struct {
	mu        sync.Mutex
	rng       *rand.Rand
	positions map[string]*domain.Position
}

// NewSimExecutor creates a paper executor with the given seed.
func NewSimExecutor(seed uint64) *SimExecutor {
	return &SimExecutor{
		rng:       rand.New(rand.NewPCG(seed, seed)),
		positions: make(map[string]*domain.Position),
	}
}

// Compile-time interface check.
var _ Executor = (*SimExecutor)(nil)

// Execute fills a signal. Buy opens a position; sell closes one and
// reports the realized outcome.
func (e *SimExecutor) Execute(_ context.Context, sig *domain.TradeSignal) (*domain.TradeOutcome, error) {
	if sig == nil {
		return nil, fmt.Errorf("nil signal")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()

	switch sig.Action {
	case domain.ActionBuy:
		if _, exists := e.positions[sig.Mint]; exists {
			return nil, fmt.Errorf("position already open for %s", sig.Mint)
		}
		e.positions[sig.Mint] = &domain.Position{
			Mint:       sig.Mint,
			AmountSOL:  sig.AmountSOL,
			EntryPrice: 1,
			OpenedAt:   now,
		}
		return &domain.TradeOutcome{
			SignalID:    sig.SignalID,
			Mint:        sig.Mint,
			NotionalSOL: sig.AmountSOL,
			ExecutedAt:  now,
		}, nil

	case domain.ActionSell:
		pos, exists := e.positions[sig.Mint]
		if !exists {
			return nil, fmt.Errorf("no open position for %s", sig.Mint)
		}
		delete(e.positions, sig.Mint)

		pnl := e.simulatePnL(sig, pos.AmountSOL)
		return &domain.TradeOutcome{
			SignalID:    sig.SignalID,
			Mint:        sig.Mint,
			NotionalSOL: pos.AmountSOL,
			PnLSOL:      pnl,
			IsWin:       pnl > 0,
			ExecutedAt:  now,
		}, nil

	default:
		return nil, fmt.Errorf("unexecutable action %q", sig.Action)
	}
}

// OpenPosition returns a copy of the tracked position for mint, or nil.
func (e *SimExecutor) OpenPosition(_ context.Context, mint string) (*domain.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[mint]
	if !ok {
		return nil, nil
	}
	copied := *pos
	return &copied, nil
}

// Positions returns copies of all open positions.
func (e *SimExecutor) Positions() []*domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*domain.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		copied := *pos
		result = append(result, &copied)
	}
	return result
}

// MarkPrice adjusts the tracked position's unrealized P&L for exit checks.
func (e *SimExecutor) MarkPrice(mint string, unrealizedPnLPct float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pos, ok := e.positions[mint]; ok {
		pos.UnrealizedPnLPct = unrealizedPnLPct
		pos.CurrentPrice = pos.EntryPrice * (1 + unrealizedPnLPct/100)
	}
}

// simulatePnL draws an outcome. Win probability scales with confidence;
// the win leg pays up to the take-profit, the loss leg costs up to the
// stop-loss.
func (e *SimExecutor) simulatePnL(sig *domain.TradeSignal, notional float64) float64 {
	winProb := 0.35 + 0.3*sig.Confidence
	if e.rng.Float64() < winProb {
		return notional * sig.TakeProfitPct / 100 * e.rng.Float64()
	}
	return -notional * sig.StopLossPct / 100 * e.rng.Float64()
}
