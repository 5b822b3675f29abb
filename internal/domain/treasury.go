package domain

import "time"

// FeeDistribution is the immutable record of one fee-collection event.
// The four shares always sum to TotalFeeSOL.
type FeeDistribution struct {
	Timestamp   time.Time
	TotalFeeSOL float64

	BotTradingSOL     float64
	InfrastructureSOL float64
	DevelopmentSOL    float64
	BuilderSOL        float64

	SourceTradeID string
}

// TreasurySnapshot is a point-in-time view of the allocator state,
// exposed read-only to reporting.
type TreasurySnapshot struct {
	Timestamp time.Time

	AvailableSOL float64
	AllocatedSOL float64
	RealizedPnL  float64

	AgentCount     int
	UtilizationPct float64 // allocated / (available + allocated)
	AggregateROI   float64 // realized P&L / total inflow, percent
}

// AgentSnapshot is a point-in-time view of one agent for the leaderboard
// and durable snapshot stores.
type AgentSnapshot struct {
	Timestamp time.Time

	AgentID  string
	Name     string
	Strategy Strategy
	Status   AgentStatus

	AllocatedSOL float64
	BalanceSOL   float64
	PnLSOL       float64
	ROIPct       float64
	WinRate      float64
	Trades       int
}
