// Package swarm manages the trading-agent population: spawning against
// treasury capital, cooldowns after loss streaks, pruning of persistent
// underperformers and deficit-driven auto-scaling toward the configured
// strategy mix.
package swarm

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/treasury"
)

// SpawnReject explains why a spawn request was declined.
type SpawnReject string

const (
	SpawnOK                  SpawnReject = ""
	SpawnCapacityExceeded    SpawnReject = "capacity_exceeded"
	SpawnInsufficientCapital SpawnReject = "insufficient_capital"
)

// SpawnResult reports the outcome of a Spawn call. Agent is a copy of the
// newly active record on success, nil on rejection.
type SpawnResult struct {
	Agent  *domain.AgentRecord
	Reject SpawnReject
}

// Rejected reports whether the spawn was declined.
func (r SpawnResult) Rejected() bool {
	return r.Reject != SpawnOK
}

// Spawner owns agent lifecycle policy. All capital movement goes through
// the treasury, which is the single coordination point for shared state;
// the spawner holds only its own terminated-agent history.
type Spawner struct {
	cfg Config
	tr  *treasury.Treasury
	log zerolog.Logger

	mu         sync.Mutex
	terminated []domain.AgentSnapshot
}

// New returns a spawner operating against tr.
func New(cfg Config, tr *treasury.Treasury, log zerolog.Logger) *Spawner {
	return &Spawner{
		cfg: cfg,
		tr:  tr,
		log: log.With().Str("component", "spawner").Logger(),
	}
}

// Spawn creates a new agent for strategy, funded with capitalSOL from the
// treasury. When the treasury cannot cover the full amount the request is
// retried with whatever is available, down to the configured minimum grant.
func (s *Spawner) Spawn(strategy domain.Strategy, capitalSOL float64) SpawnResult {
	agents := s.tr.Agents()
	if len(agents) >= s.cfg.MaxAgents {
		s.log.Warn().Int("population", len(agents)).Msg("spawn rejected, at capacity")
		return SpawnResult{Reject: SpawnCapacityExceeded}
	}

	grant := capitalSOL
	if avail := s.tr.Available(); grant > avail {
		grant = avail
	}
	if grant < s.cfg.MinCapitalPerAgent {
		s.log.Warn().
			Str("strategy", string(strategy)).
			Float64("requested_sol", capitalSOL).
			Msg("spawn rejected, insufficient capital")
		return SpawnResult{Reject: SpawnInsufficientCapital}
	}

	sameStrategy := 0
	for _, a := range agents {
		if a.Strategy == strategy {
			sameStrategy++
		}
	}

	agentID := fmt.Sprintf("agent_%s", uuid.NewString()[:8])
	res := s.tr.Allocate(agentID, strategy, grant)
	if res.Rejected() {
		if res.Reject == treasury.RejectPopulationCap {
			return SpawnResult{Reject: SpawnCapacityExceeded}
		}
		return SpawnResult{Reject: SpawnInsufficientCapital}
	}

	name := agentName(strategy, sameStrategy)
	s.tr.UpdateAgent(agentID, func(a *domain.AgentRecord) {
		a.Name = name
		a.Status = domain.StatusActive
	})

	s.log.Info().
		Str("agent_id", agentID).
		Str("name", name).
		Str("strategy", string(strategy)).
		Float64("capital_sol", res.Granted).
		Msg("agent spawned")

	rec, _ := s.tr.Get(agentID)
	return SpawnResult{Agent: &rec}
}

// Terminate ends the agent's lifecycle, returns its balance to the
// treasury and retains a final snapshot for the leaderboard history.
// Returns the capital returned; zero for an unknown agent.
func (s *Spawner) Terminate(agentID string) float64 {
	rec, ok := s.tr.Get(agentID)
	if !ok {
		return 0
	}

	returned := s.tr.Remove(agentID)

	s.mu.Lock()
	s.terminated = append(s.terminated, domain.AgentSnapshot{
		Timestamp:    time.Now().UTC(),
		AgentID:      rec.ID,
		Name:         rec.Name,
		Strategy:     rec.Strategy,
		Status:       domain.StatusTerminated,
		AllocatedSOL: rec.AllocatedCapital,
		BalanceSOL:   0,
		PnLSOL:       rec.TotalPnL,
		ROIPct:       rec.ROIPct(),
		WinRate:      rec.WinRate(),
		Trades:       rec.Wins + rec.Losses,
	})
	s.mu.Unlock()

	s.log.Info().
		Str("agent_id", agentID).
		Str("name", rec.Name).
		Float64("returned_sol", returned).
		Msg("agent terminated")
	return returned
}

// RecordTradeResult applies one fill to the agent: performance update via
// the treasury, then loss-streak bookkeeping. Every Nth consecutive loss
// places the agent in cooldown; a cooldown that has expired flips back to
// active on the next recorded trade.
func (s *Spawner) RecordTradeResult(agentID string, pnlSOL float64, isWin bool) {
	wins := 0
	if isWin {
		wins = 1
	}
	s.tr.UpdatePerformance(agentID, pnlSOL, 1, wins)

	now := time.Now().UTC()
	s.tr.UpdateAgent(agentID, func(a *domain.AgentRecord) {
		if a.Status == domain.StatusCooldown && a.CooldownUntil != nil && !now.Before(*a.CooldownUntil) {
			a.Status = domain.StatusActive
			a.CooldownUntil = nil
		}

		if isWin {
			a.LossStreak = 0
			return
		}
		a.LossStreak++
		if a.LossStreak%s.cfg.CooldownEveryNLosses == 0 {
			until := now.Add(s.cfg.CooldownDuration)
			a.Status = domain.StatusCooldown
			a.CooldownUntil = &until
			s.log.Warn().
				Str("agent_id", agentID).
				Int("loss_streak", a.LossStreak).
				Time("until", until).
				Msg("agent entering cooldown")
		}
	})
}

// PruneUnderperformers terminates every active or paused agent whose ROI
// is below minROI and whose trade count today meets the activity floor.
// Agents with too little history are protected. Returns the number pruned.
func (s *Spawner) PruneUnderperformers(minROI float64) int {
	pruned := 0
	for _, a := range s.tr.Agents() {
		if a.Status != domain.StatusActive && a.Status != domain.StatusPaused {
			continue
		}
		if a.TradesToday < s.cfg.ActivityFloor {
			continue
		}
		if a.ROIPct() >= minROI {
			continue
		}
		s.log.Info().
			Str("agent_id", a.ID).
			Str("name", a.Name).
			Float64("roi_pct", a.ROIPct()).
			Msg("pruning underperformer")
		s.Terminate(a.ID)
		pruned++
	}
	return pruned
}

// AutoScale adjusts the population once. With aggregate P&L at or below
// the prune trigger and the population above the floor, it prunes instead
// of growing. Otherwise, when the treasury holds at least two agents'
// worth of capital and there is headroom, it spawns up to a batch of
// agents, each into the strategy with the largest target deficit (ties
// broken by stable strategy order). Returns spawned and pruned counts.
func (s *Spawner) AutoScale() (spawned, pruned int) {
	agents := s.tr.Agents()

	var totalPnL float64
	counts := make(map[domain.Strategy]int)
	for _, a := range agents {
		totalPnL += a.TotalPnL
		counts[a.Strategy]++
	}

	if totalPnL <= s.cfg.PruneTriggerPnL && len(agents) > s.cfg.MinAgents {
		pruned = s.PruneUnderperformers(s.cfg.PruneMinROI)
		s.log.Info().
			Float64("total_pnl", totalPnL).
			Int("pruned", pruned).
			Msg("auto-scale pruned instead of spawning")
		return 0, pruned
	}

	if s.tr.Available() <= 2*s.cfg.CapitalPerAgent || len(agents) >= s.cfg.MaxAgents {
		return 0, 0
	}

	for i := 0; i < s.cfg.AutoScaleBatch; i++ {
		strategy, deficit := s.largestDeficit(counts)
		if deficit <= 0 {
			break
		}
		res := s.Spawn(strategy, s.cfg.CapitalPerAgent)
		if res.Rejected() {
			break
		}
		counts[strategy]++
		spawned++
	}

	if spawned > 0 {
		s.log.Info().Int("spawned", spawned).Msg("auto-scale spawned agents")
	}
	return spawned, 0
}

// largestDeficit picks the strategy furthest below its population target.
// Iteration follows the stable strategy order so ties resolve to the first
// strategy encountered.
func (s *Spawner) largestDeficit(counts map[domain.Strategy]int) (domain.Strategy, int) {
	var best domain.Strategy
	bestDeficit := 0
	for _, strategy := range domain.Strategies {
		target, ok := s.cfg.StrategyTargets[strategy]
		if !ok {
			continue
		}
		if d := target - counts[strategy]; d > bestDeficit {
			bestDeficit = d
			best = strategy
		}
	}
	return best, bestDeficit
}

// StrategyStats aggregates the live agents of one strategy.
type StrategyStats struct {
	Count      int
	Target     int
	CapitalSOL float64
	PnLSOL     float64
	AvgWinRate float64
}

// Status is a point-in-time view of the whole swarm.
type Status struct {
	TotalAgents  int
	ActiveAgents int
	MaxAgents    int
	CapacityPct  float64

	TotalCapitalSOL float64
	TotalPnLSOL     float64
	TradesToday     int

	ByStrategy    map[domain.Strategy]StrategyStats
	TopPerformers []domain.AgentSnapshot
}

// Status summarizes the live population, with a top-10 leaderboard by ROI.
func (s *Spawner) Status() Status {
	agents := s.tr.Agents()
	now := time.Now().UTC()

	st := Status{
		TotalAgents: len(agents),
		MaxAgents:   s.cfg.MaxAgents,
		ByStrategy:  make(map[domain.Strategy]StrategyStats),
	}

	var snapshots []domain.AgentSnapshot
	for i := range agents {
		a := &agents[i]
		if !a.IsActive(now) {
			continue
		}
		st.ActiveAgents++
		st.TotalCapitalSOL += a.CurrentBalance
		st.TotalPnLSOL += a.TotalPnL
		st.TradesToday += a.TradesToday

		stats := st.ByStrategy[a.Strategy]
		stats.Count++
		stats.Target = s.cfg.StrategyTargets[a.Strategy]
		stats.CapitalSOL += a.CurrentBalance
		stats.PnLSOL += a.TotalPnL
		stats.AvgWinRate += a.WinRate()
		st.ByStrategy[a.Strategy] = stats

		snapshots = append(snapshots, domain.AgentSnapshot{
			Timestamp:    now,
			AgentID:      a.ID,
			Name:         a.Name,
			Strategy:     a.Strategy,
			Status:       a.Status,
			AllocatedSOL: a.AllocatedCapital,
			BalanceSOL:   a.CurrentBalance,
			PnLSOL:       a.TotalPnL,
			ROIPct:       a.ROIPct(),
			WinRate:      a.WinRate(),
			Trades:       a.Wins + a.Losses,
		})
	}

	for strategy, stats := range st.ByStrategy {
		if stats.Count > 0 {
			stats.AvgWinRate /= float64(stats.Count)
			st.ByStrategy[strategy] = stats
		}
	}
	if st.MaxAgents > 0 {
		st.CapacityPct = float64(st.ActiveAgents) / float64(st.MaxAgents) * 100
	}

	sort.SliceStable(snapshots, func(i, j int) bool { return snapshots[i].ROIPct > snapshots[j].ROIPct })
	if len(snapshots) > 10 {
		snapshots = snapshots[:10]
	}
	st.TopPerformers = snapshots
	return st
}

// Terminated returns the retained history of terminated agents.
func (s *Spawner) Terminated() []domain.AgentSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AgentSnapshot, len(s.terminated))
	copy(out, s.terminated)
	return out
}
