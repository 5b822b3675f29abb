package swarm

import (
	"time"

	"solana-agent-swarm/internal/domain"
)

// Config bounds the spawner's lifecycle policy.
type Config struct {
	// MaxAgents caps the live population; MinAgents is the floor below
	// which pruning never runs.
	MaxAgents int
	MinAgents int

	// CapitalPerAgent is the standard grant for a new agent.
	// MinCapitalPerAgent is the smallest grant worth spawning with when
	// the treasury cannot cover the full amount.
	CapitalPerAgent    float64
	MinCapitalPerAgent float64

	// CooldownEveryNLosses places an agent in cooldown on every Nth
	// consecutive loss, for CooldownDuration.
	CooldownEveryNLosses int
	CooldownDuration     time.Duration

	// ActivityFloor protects agents with too little history from
	// pruning; PruneMinROI is the ROI (percent) below which an active
	// agent with enough history is terminated.
	ActivityFloor int
	PruneMinROI   float64

	// AutoScaleBatch caps spawns per auto-scale pass. PruneTriggerPnL
	// is the aggregate P&L at or below which a pass prunes instead of
	// spawning.
	AutoScaleBatch  int
	PruneTriggerPnL float64

	// StrategyTargets is the desired population per strategy; deficits
	// against it drive strategy selection during auto-scaling.
	StrategyTargets map[domain.Strategy]int
}

// DefaultConfig mirrors production swarm policy.
func DefaultConfig() Config {
	return Config{
		MaxAgents:            100,
		MinAgents:            5,
		CapitalPerAgent:      0.05,
		MinCapitalPerAgent:   0.02,
		CooldownEveryNLosses: 3,
		CooldownDuration:     5 * time.Minute,
		ActivityFloor:        5,
		PruneMinROI:          -20,
		AutoScaleBatch:       5,
		PruneTriggerPnL:      -0.1,
		StrategyTargets: map[domain.Strategy]int{
			domain.StrategyMomentum:  15,
			domain.StrategyGmgnAI:    10,
			domain.StrategyAxiom:     10,
			domain.StrategyWhaleCopy: 10,
			domain.StrategyNovaJito:  15,
			domain.StrategyPumpGrad:  15,
			domain.StrategySentiment: 5,
			domain.StrategyArbitrage: 5,
			domain.StrategySniper:    10,
			domain.StrategyScalper:   5,
		},
	}
}
