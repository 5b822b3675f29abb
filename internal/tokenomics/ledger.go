package tokenomics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
)

// Ledger is the process-wide fee pool, divided into four buckets by the
// configured percentages. Collection never fails on valid input; the only
// failure mode is misconfiguration, rejected at construction.
type Ledger struct {
	cfg Config
	log zerolog.Logger

	mu sync.Mutex

	// Current balances.
	botTrading     float64
	infrastructure float64
	development    float64
	builder        float64

	// Cumulative inflow per bucket. Monotonic; the treasury allocator
	// syncs against the bot-trading cumulative, never the balance.
	botTradingTotal     float64
	infrastructureTotal float64
	developmentTotal    float64
	builderTotal        float64

	totalCollected float64
	history        []domain.FeeDistribution
}

// NewLedger validates cfg and returns an empty ledger.
func NewLedger(cfg Config, log zerolog.Logger) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{cfg: cfg, log: log.With().Str("component", "ledger").Logger()}, nil
}

// Collect derives the fee from a trade's notional value, credits the four
// buckets and appends an immutable distribution record. Amounts below any
// dust threshold still allocate; they are simply very small.
func (l *Ledger) Collect(notionalSOL float64, tradeID string) domain.FeeDistribution {
	if notionalSOL < 0 {
		notionalSOL = 0
	}
	fee := notionalSOL * l.cfg.FeeRate()

	dist := domain.FeeDistribution{
		Timestamp:         time.Now().UTC(),
		TotalFeeSOL:       fee,
		BotTradingSOL:     fee * float64(l.cfg.BotTradingPct) / 100,
		InfrastructureSOL: fee * float64(l.cfg.InfrastructurePct) / 100,
		DevelopmentSOL:    fee * float64(l.cfg.DevelopmentPct) / 100,
		BuilderSOL:        fee * float64(l.cfg.BuilderPct) / 100,
		SourceTradeID:     tradeID,
	}

	l.mu.Lock()
	l.botTrading += dist.BotTradingSOL
	l.infrastructure += dist.InfrastructureSOL
	l.development += dist.DevelopmentSOL
	l.builder += dist.BuilderSOL
	l.botTradingTotal += dist.BotTradingSOL
	l.infrastructureTotal += dist.InfrastructureSOL
	l.developmentTotal += dist.DevelopmentSOL
	l.builderTotal += dist.BuilderSOL
	l.totalCollected += fee
	l.history = append(l.history, dist)
	l.mu.Unlock()

	l.log.Debug().
		Str("trade_id", tradeID).
		Float64("fee_sol", fee).
		Float64("bot_share", dist.BotTradingSOL).
		Msg("fee collected")

	return dist
}

// BotTradingCumulative returns the monotonic total routed to the
// bot-trading bucket since process start.
func (l *Ledger) BotTradingCumulative() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.botTradingTotal
}

// WithdrawBuilder withdraws from the builder-income bucket, clamped to the
// bucket balance. A negative amount withdraws the full balance.
func (l *Ledger) WithdrawBuilder(amountSOL float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amountSOL < 0 || amountSOL > l.builder {
		amountSOL = l.builder
	}
	l.builder -= amountSOL

	l.log.Info().Float64("amount_sol", amountSOL).Msg("builder withdrawal")
	return amountSOL
}

// FeeStats summarizes collection activity for reporting.
type FeeStats struct {
	TotalCollectedSOL float64
	DistributionCount int
	AvgFeeSOL         float64

	BotTradingTotal     float64
	InfrastructureTotal float64
	DevelopmentTotal    float64
	BuilderTotal        float64

	InfrastructureBalance float64
}

// Stats returns current fee-collection statistics.
func (l *Ledger) Stats() FeeStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := FeeStats{
		TotalCollectedSOL:     l.totalCollected,
		DistributionCount:     len(l.history),
		BotTradingTotal:       l.botTradingTotal,
		InfrastructureTotal:   l.infrastructureTotal,
		DevelopmentTotal:      l.developmentTotal,
		BuilderTotal:          l.builderTotal,
		InfrastructureBalance: l.infrastructure,
	}
	if s.DistributionCount > 0 {
		s.AvgFeeSOL = s.TotalCollectedSOL / float64(s.DistributionCount)
	}
	return s
}

// History returns a copy of the append-only distribution history.
func (l *Ledger) History() []domain.FeeDistribution {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.FeeDistribution, len(l.history))
	copy(out, l.history)
	return out
}

// Config returns the ledger configuration.
func (l *Ledger) Config() Config {
	return l.cfg
}
