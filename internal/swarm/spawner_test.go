package swarm

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/treasury"
)

func newTestSpawner(cfg Config, seedSOL float64) (*Spawner, *treasury.Treasury) {
	tr := treasury.New(treasury.DefaultConfig(), zerolog.Nop())
	tr.Seed(seedSOL)
	return New(cfg, tr, zerolog.Nop()), tr
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSpawnCreatesActiveAgent(t *testing.T) {
	s, _ := newTestSpawner(DefaultConfig(), 1.0)

	res := s.Spawn(domain.StrategyMomentum, 0.05)
	if res.Rejected() {
		t.Fatalf("spawn rejected: %q", res.Reject)
	}
	a := res.Agent
	if a.Status != domain.StatusActive {
		t.Fatalf("status = %q, want active", a.Status)
	}
	if a.Strategy != domain.StrategyMomentum {
		t.Fatalf("strategy = %q", a.Strategy)
	}
	if !almostEqual(a.CurrentBalance, 0.05) {
		t.Fatalf("balance = %v, want 0.05", a.CurrentBalance)
	}
	if !strings.HasSuffix(a.Name, "-001") {
		t.Fatalf("name = %q, want first agent numbered 001", a.Name)
	}

	prefix := strings.TrimSuffix(a.Name, "-001")
	found := false
	for _, p := range namePrefixes[domain.StrategyMomentum] {
		if p == prefix {
			found = true
		}
	}
	if !found {
		t.Fatalf("name prefix %q not in momentum pool", prefix)
	}
}

func TestSpawnRejectsAtCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAgents = 1
	s, _ := newTestSpawner(cfg, 1.0)

	if res := s.Spawn(domain.StrategyMomentum, 0.05); res.Rejected() {
		t.Fatalf("first spawn rejected: %q", res.Reject)
	}
	if res := s.Spawn(domain.StrategySniper, 0.05); res.Reject != SpawnCapacityExceeded {
		t.Fatalf("got %q, want capacity_exceeded", res.Reject)
	}
}

func TestSpawnRetriesWithAvailableCapital(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)

	// Drain the pool to 0.03 without shrinking total treasury capital.
	tr.Allocate("x1", domain.StrategyArbitrage, 0.2)
	tr.Allocate("x2", domain.StrategyArbitrage, 0.2)
	tr.Allocate("x3", domain.StrategyArbitrage, 0.2)
	tr.Allocate("x4", domain.StrategyArbitrage, 0.2)
	tr.Allocate("x5", domain.StrategyArbitrage, 0.17)
	if !almostEqual(tr.Available(), 0.03) {
		t.Fatalf("available = %v, want 0.03", tr.Available())
	}

	// Full grant unavailable: falls back to what the treasury holds.
	res := s.Spawn(domain.StrategyMomentum, 0.05)
	if res.Rejected() {
		t.Fatalf("spawn rejected: %q", res.Reject)
	}
	if !almostEqual(res.Agent.CurrentBalance, 0.03) {
		t.Fatalf("balance = %v, want 0.03", res.Agent.CurrentBalance)
	}

	// Below the minimum grant: rejected outright.
	if res := s.Spawn(domain.StrategySniper, 0.05); res.Reject != SpawnInsufficientCapital {
		t.Fatalf("got %q, want insufficient_capital", res.Reject)
	}
}

func TestTerminateReturnsCapital(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)

	res := s.Spawn(domain.StrategyMomentum, 0.05)
	returned := s.Terminate(res.Agent.ID)
	if !almostEqual(returned, 0.05) {
		t.Fatalf("returned = %v, want 0.05", returned)
	}
	if !almostEqual(tr.Available(), 1.0) {
		t.Fatalf("available = %v, want 1.0", tr.Available())
	}
	if _, ok := tr.Get(res.Agent.ID); ok {
		t.Fatal("agent still live after terminate")
	}

	hist := s.Terminated()
	if len(hist) != 1 || hist[0].Status != domain.StatusTerminated {
		t.Fatalf("terminated history = %+v", hist)
	}
}

func TestCooldownOnThirdConsecutiveLoss(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)
	res := s.Spawn(domain.StrategyMomentum, 0.05)
	id := res.Agent.ID

	s.RecordTradeResult(id, -0.001, false)
	s.RecordTradeResult(id, -0.001, false)
	a, _ := tr.Get(id)
	if a.Status != domain.StatusActive {
		t.Fatalf("status after 2 losses = %q, want active", a.Status)
	}

	s.RecordTradeResult(id, -0.001, false)
	a, _ = tr.Get(id)
	if a.Status != domain.StatusCooldown {
		t.Fatalf("status after 3rd loss = %q, want cooldown", a.Status)
	}
	if a.CooldownUntil == nil || !a.CooldownUntil.After(time.Now().UTC()) {
		t.Fatalf("cooldown expiry = %v", a.CooldownUntil)
	}
	if a.IsActive(time.Now().UTC()) {
		t.Fatal("agent should not be trade-eligible during cooldown")
	}
}

func TestWinResetsLossStreak(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)
	res := s.Spawn(domain.StrategyMomentum, 0.05)
	id := res.Agent.ID

	s.RecordTradeResult(id, -0.001, false)
	s.RecordTradeResult(id, -0.001, false)
	s.RecordTradeResult(id, 0.002, true)
	s.RecordTradeResult(id, -0.001, false)

	a, _ := tr.Get(id)
	if a.Status != domain.StatusActive {
		t.Fatalf("status = %q, want active", a.Status)
	}
	if a.LossStreak != 1 {
		t.Fatalf("loss streak = %d, want 1", a.LossStreak)
	}
}

func TestCooldownExpiryReactivates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CooldownDuration = -time.Second // already expired when set
	s, tr := newTestSpawner(cfg, 1.0)
	res := s.Spawn(domain.StrategyMomentum, 0.05)
	id := res.Agent.ID

	s.RecordTradeResult(id, -0.001, false)
	s.RecordTradeResult(id, -0.001, false)
	s.RecordTradeResult(id, -0.001, false)

	a, _ := tr.Get(id)
	if !a.IsActive(time.Now().UTC()) {
		t.Fatal("expired cooldown should be implicitly active")
	}

	// The next recorded trade flips the status back explicitly.
	s.RecordTradeResult(id, 0.001, true)
	a, _ = tr.Get(id)
	if a.Status != domain.StatusActive || a.CooldownUntil != nil {
		t.Fatalf("status = %q cooldown_until = %v, want active/nil", a.Status, a.CooldownUntil)
	}
}

func TestPruneProtectsLowActivity(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)

	young := s.Spawn(domain.StrategyMomentum, 0.05).Agent.ID
	seasoned := s.Spawn(domain.StrategySniper, 0.05).Agent.ID

	// Both deeply negative; only the one past the activity floor goes.
	tr.UpdateAgent(young, func(a *domain.AgentRecord) {
		a.TotalPnL = -0.02
		a.TradesToday = 3
	})
	tr.UpdateAgent(seasoned, func(a *domain.AgentRecord) {
		a.TotalPnL = -0.02
		a.TradesToday = 6
	})

	pruned := s.PruneUnderperformers(-20)
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}
	if _, ok := tr.Get(young); !ok {
		t.Fatal("low-activity agent should be protected")
	}
	if _, ok := tr.Get(seasoned); ok {
		t.Fatal("seasoned underperformer should be terminated")
	}
}

func TestAutoScaleSpawnsLargestDeficit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoScaleBatch = 3
	cfg.StrategyTargets = map[domain.Strategy]int{
		domain.StrategyMomentum: 2,
		domain.StrategySniper:   1,
	}
	s, tr := newTestSpawner(cfg, 1.0)

	spawned, pruned := s.AutoScale()
	if pruned != 0 {
		t.Fatalf("pruned = %d, want 0", pruned)
	}
	if spawned != 3 {
		t.Fatalf("spawned = %d, want 3", spawned)
	}

	counts := make(map[domain.Strategy]int)
	for _, a := range tr.Agents() {
		counts[a.Strategy]++
	}
	// Deficits start [momentum 2, sniper 1]; momentum first, and the
	// tie at deficit 1 resolves to momentum by stable strategy order.
	if counts[domain.StrategyMomentum] != 2 || counts[domain.StrategySniper] != 1 {
		t.Fatalf("strategy counts = %v", counts)
	}
}

func TestAutoScaleStopsWhenTargetsMet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyTargets = map[domain.Strategy]int{domain.StrategyMomentum: 1}
	s, tr := newTestSpawner(cfg, 1.0)

	spawned, _ := s.AutoScale()
	if spawned != 1 {
		t.Fatalf("spawned = %d, want 1", spawned)
	}
	spawned, _ = s.AutoScale()
	if spawned != 0 {
		t.Fatalf("second pass spawned = %d, want 0", spawned)
	}
	if got := len(tr.Agents()); got != 1 {
		t.Fatalf("population = %d, want 1", got)
	}
}

func TestAutoScaleSkipsWhenCapitalLow(t *testing.T) {
	// Available capital must exceed twice the per-agent grant.
	s, _ := newTestSpawner(DefaultConfig(), 0.08)

	spawned, pruned := s.AutoScale()
	if spawned != 0 || pruned != 0 {
		t.Fatalf("spawned=%d pruned=%d, want 0/0", spawned, pruned)
	}
}

func TestAutoScalePrunesOnNegativeAggregate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAgents = 1
	s, tr := newTestSpawner(cfg, 1.0)

	ids := make([]string, 0, 3)
	for _, strat := range []domain.Strategy{domain.StrategyMomentum, domain.StrategySniper, domain.StrategyScalper} {
		ids = append(ids, s.Spawn(strat, 0.05).Agent.ID)
	}
	tr.UpdateAgent(ids[0], func(a *domain.AgentRecord) {
		a.TotalPnL = -0.2
		a.TradesToday = 10
	})

	spawned, pruned := s.AutoScale()
	if spawned != 0 {
		t.Fatalf("spawned = %d, want 0", spawned)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}
}

func TestStatusAggregates(t *testing.T) {
	s, tr := newTestSpawner(DefaultConfig(), 1.0)
	a1 := s.Spawn(domain.StrategyMomentum, 0.05).Agent.ID
	s.Spawn(domain.StrategyMomentum, 0.05)
	s.Spawn(domain.StrategySniper, 0.05)

	tr.UpdateAgent(a1, func(a *domain.AgentRecord) {
		a.TotalPnL = 0.01
		a.Wins = 2
		a.TradesToday = 2
	})

	st := s.Status()
	if st.TotalAgents != 3 || st.ActiveAgents != 3 {
		t.Fatalf("totals = %d/%d, want 3/3", st.TotalAgents, st.ActiveAgents)
	}
	if st.ByStrategy[domain.StrategyMomentum].Count != 2 {
		t.Fatalf("momentum count = %d, want 2", st.ByStrategy[domain.StrategyMomentum].Count)
	}
	if !almostEqual(st.TotalPnLSOL, 0.01) {
		t.Fatalf("total pnl = %v, want 0.01", st.TotalPnLSOL)
	}
	if len(st.TopPerformers) != 3 || st.TopPerformers[0].AgentID != a1 {
		t.Fatalf("leaderboard head = %+v", st.TopPerformers)
	}
}
