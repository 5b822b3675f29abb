package domain

import "time"

// Strategy is the trading style tag assigned to an agent at spawn time.
// It is immutable for the lifetime of the agent and selects scoring
// weights and population targets.
type Strategy string

// Available strategies.
const (
	StrategyMomentum   Strategy = "momentum"
	StrategyGmgnAI     Strategy = "gmgn_ai"
	StrategyAxiom      Strategy = "axiom_migration"
	StrategyWhaleCopy  Strategy = "whale_copy"
	StrategyNovaJito   Strategy = "nova_jito"
	StrategyPumpGrad   Strategy = "pump_graduate"
	StrategySentiment  Strategy = "sentiment"
	StrategyArbitrage  Strategy = "arbitrage"
	StrategySniper     Strategy = "sniper"
	StrategyScalper    Strategy = "scalper"
)

// Strategies lists all strategies in stable order. Deficit-based strategy
// selection during auto-scaling breaks ties by this order.
var Strategies = []Strategy{
	StrategyMomentum,
	StrategyPumpGrad,
	StrategySniper,
	StrategyWhaleCopy,
	StrategySentiment,
	StrategyGmgnAI,
	StrategyAxiom,
	StrategyNovaJito,
	StrategyArbitrage,
	StrategyScalper,
}

// AgentStatus is the lifecycle state of a trading agent.
type AgentStatus string

const (
	StatusInitializing AgentStatus = "initializing"
	StatusActive       AgentStatus = "active"
	StatusPaused       AgentStatus = "paused"
	StatusCooldown     AgentStatus = "cooldown"
	StatusTerminated   AgentStatus = "terminated"
)

// AgentRecord is one simulated trading agent and its capital bookkeeping.
//
// AllocatedCapital is the monotonic historical total granted to the agent;
// CurrentBalance is allocated capital plus realized P&L and is mutated by
// every trade result. CurrentBalance may go negative transiently after a
// losing trade; AllocatedCapital never goes negative.
type AgentRecord struct {
	ID       string
	Name     string
	Strategy Strategy
	Status   AgentStatus

	AllocatedCapital float64
	CurrentBalance   float64
	TotalPnL         float64

	TradesToday int
	Wins        int
	Losses      int
	LossStreak  int

	CreatedAt      time.Time
	LastActivityAt time.Time
	CooldownUntil  *time.Time
}

// WinRate returns wins / (wins + losses), 0 when the agent has no history.
func (a *AgentRecord) WinRate() float64 {
	total := a.Wins + a.Losses
	if total == 0 {
		return 0
	}
	return float64(a.Wins) / float64(total)
}

// ROIPct returns cumulative realized P&L over allocated capital, in percent.
func (a *AgentRecord) ROIPct() float64 {
	if a.AllocatedCapital <= 0 {
		return 0
	}
	return a.TotalPnL / a.AllocatedCapital * 100
}

// IsActive reports whether the agent is eligible for new trades at t.
// An agent in Cooldown becomes implicitly active again once the cooldown
// expiry has passed.
func (a *AgentRecord) IsActive(t time.Time) bool {
	switch a.Status {
	case StatusActive:
		return true
	case StatusCooldown:
		return a.CooldownUntil == nil || !t.Before(*a.CooldownUntil)
	default:
		return false
	}
}
