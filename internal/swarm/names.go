package swarm

import (
	"fmt"
	"math/rand/v2"

	"solana-agent-swarm/internal/domain"
)

// namePrefixes gives each strategy a themed pool of display-name prefixes.
var namePrefixes = map[domain.Strategy][]string{
	domain.StrategyMomentum:  {"Surge", "Wave", "Thrust", "Rocket"},
	domain.StrategyGmgnAI:    {"Oracle", "Prophet", "Sage", "Seer"},
	domain.StrategyAxiom:     {"Bridge", "Migrate", "Cross", "Leap"},
	domain.StrategyWhaleCopy: {"Shadow", "Mirror", "Echo", "Follow"},
	domain.StrategyNovaJito:  {"Flash", "Bolt", "Strike", "Zap"},
	domain.StrategyPumpGrad:  {"Scholar", "Graduate", "Alumni", "Elite"},
	domain.StrategySentiment: {"Pulse", "Vibe", "Mood", "Feel"},
	domain.StrategyArbitrage: {"Arb", "Gap", "Spread", "Delta"},
	domain.StrategySniper:    {"Scope", "Target", "Aim", "Lock"},
	domain.StrategyScalper:   {"Quick", "Swift", "Rapid", "Blink"},
}

// agentName builds a display name like "Surge-003", numbered by how many
// agents of the strategy already exist.
func agentName(strategy domain.Strategy, existing int) string {
	prefixes, ok := namePrefixes[strategy]
	if !ok {
		prefixes = []string{"Agent"}
	}
	prefix := prefixes[rand.IntN(len(prefixes))]
	return fmt.Sprintf("%s-%03d", prefix, existing+1)
}
