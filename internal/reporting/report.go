// Package reporting renders swarm state as human-readable reports.
package reporting

import (
	"time"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/swarm"
	"solana-agent-swarm/internal/tokenomics"
)

// Report is a point-in-time summary of the whole swarm.
type Report struct {
	GeneratedAt time.Time

	Treasury domain.TreasurySnapshot
	Swarm    swarm.Status
	Fees     tokenomics.FeeStats

	// Leaderboard holds agents sorted by realized P&L, best first.
	Leaderboard []domain.AgentSnapshot

	Flywheel FlywheelMetrics
}

// FlywheelMetrics estimates how collected fees compound into more trading
// capacity. Illustrative figures driven by tokenomics config constants.
type FlywheelMetrics struct {
	BotTradingCapitalSOL float64
	TradesEnabled        int
	PotentialFeesSOL     float64
	Multiplier           float64

	InfraRunwayDays float64
	DevHoursFunded  float64
}
