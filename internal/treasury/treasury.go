// Package treasury implements the capital allocator: the single
// coordination point for the available/allocated pools and the live
// agent table. All mutating operations serialize on one mutex so that
// rebalance passes never interleave with concurrent allocations.
package treasury

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
)

const maxAuditEntries = 1000

// AuditEntry records one capital movement for the in-memory action history.
type AuditEntry struct {
	Timestamp time.Time
	Op        string
	AgentID   string
	AmountSOL float64
}

type strategyPerf struct {
	totalPnL float64
	trades   int
}

// Treasury owns the bot-trading capital pool and the agent record table.
//
// Conservation law: available + allocated == total fee inflow − withdrawn,
// maintained by every operation. Allocate moves available→allocated,
// Recall moves allocated→available; performance updates touch agent
// balances and the aggregate P&L only.
type Treasury struct {
	cfg Config
	log zerolog.Logger

	mu sync.Mutex

	available float64
	allocated float64

	realizedPnL float64
	inflow      float64
	withdrawn   float64

	// Cumulative bot-trading fees already absorbed into the pools.
	absorbedFees float64

	agents map[string]*domain.AgentRecord
	order  []string // insertion order, for stable iteration

	perf    map[domain.Strategy]*strategyPerf
	history []AuditEntry
}

// New returns an empty treasury governed by cfg.
func New(cfg Config, log zerolog.Logger) *Treasury {
	return &Treasury{
		cfg:    cfg,
		log:    log.With().Str("component", "treasury").Logger(),
		agents: make(map[string]*domain.AgentRecord),
		perf:   make(map[domain.Strategy]*strategyPerf),
	}
}

// Config returns the allocator configuration.
func (t *Treasury) Config() Config {
	return t.cfg
}

// Seed credits the available pool directly, counted as inflow. Used for
// bootstrap capital before any fees have been collected.
func (t *Treasury) Seed(amountSOL float64) {
	if amountSOL <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.available += amountSOL
	t.inflow += amountSOL
	t.audit("seed", "", amountSOL)
	t.checkConservation("seed")
}

// Allocate grants capital to the named agent, creating its record when it
// does not yet exist. The request is rejected below the configured minimum,
// above the currently available pool, or when a new record would exceed the
// population cap. Requests above the single-allocation cap (a fraction of
// total treasury capital) are clamped and proceed.
//
// An allocation for an existing agent merges into its record instead of
// creating a duplicate.
func (t *Treasury) Allocate(agentID string, strategy domain.Strategy, amountSOL float64) AllocationResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amountSOL < t.cfg.MinAllocationSOL {
		return AllocationResult{Reject: RejectBelowMinimum}
	}

	rec, exists := t.agents[agentID]
	if !exists && len(t.agents) >= t.cfg.MaxAgents {
		return AllocationResult{Reject: RejectPopulationCap}
	}
	if amountSOL > t.available {
		return AllocationResult{Reject: RejectInsufficientFunds}
	}

	clamped := false
	if maxAlloc := t.cfg.MaxAllocationPct * (t.available + t.allocated); amountSOL > maxAlloc {
		amountSOL = maxAlloc
		clamped = true
	}

	now := time.Now().UTC()
	if !exists {
		rec = &domain.AgentRecord{
			ID:        agentID,
			Strategy:  strategy,
			Status:    domain.StatusInitializing,
			CreatedAt: now,
		}
		t.agents[agentID] = rec
		t.order = append(t.order, agentID)
	}

	t.available -= amountSOL
	t.allocated += amountSOL
	rec.AllocatedCapital += amountSOL
	rec.CurrentBalance += amountSOL
	rec.LastActivityAt = now

	t.audit("allocate", agentID, amountSOL)
	t.checkConservation("allocate")

	t.log.Info().
		Str("agent_id", agentID).
		Str("strategy", string(strategy)).
		Float64("amount_sol", amountSOL).
		Bool("clamped", clamped).
		Float64("available", t.available).
		Msg("capital allocated")

	cp := *rec
	return AllocationResult{Agent: &cp, Granted: amountSOL, Clamped: clamped}
}

// Recall returns capital from an agent to the available pool. A negative
// amount recalls the agent's entire current balance. The amount is clamped
// to the agent's current balance. Returns the amount actually recalled;
// zero for an unknown agent.
func (t *Treasury) Recall(agentID string, amountSOL float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recallLocked(agentID, amountSOL, "recall")
}

func (t *Treasury) recallLocked(agentID string, amountSOL float64, op string) float64 {
	rec, ok := t.agents[agentID]
	if !ok {
		return 0
	}
	if amountSOL < 0 || amountSOL > rec.CurrentBalance {
		amountSOL = rec.CurrentBalance
	}
	if amountSOL <= 0 {
		return 0
	}

	rec.CurrentBalance -= amountSOL
	t.allocated -= amountSOL
	t.available += amountSOL

	t.audit(op, agentID, amountSOL)
	t.checkConservation(op)

	t.log.Info().
		Str("agent_id", agentID).
		Float64("amount_sol", amountSOL).
		Str("op", op).
		Msg("capital recalled")
	return amountSOL
}

// UpdatePerformance applies one trade result batch to the named agent:
// P&L delta, trade count and win count. Strategy-level aggregates feed
// AutoAllocate weighting. If the agent's ROI breaches the drawdown
// threshold, half of its current balance is recalled immediately as a
// unilateral risk-control action.
func (t *Treasury) UpdatePerformance(agentID string, pnlDelta float64, trades, wins int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.agents[agentID]
	if !ok {
		return
	}

	rec.TotalPnL += pnlDelta
	rec.CurrentBalance += pnlDelta
	rec.TradesToday += trades
	rec.Wins += wins
	rec.Losses += trades - wins
	rec.LastActivityAt = time.Now().UTC()

	// Realized P&L flows through the agent balance and the aggregate
	// only; the available/allocated pools are never touched here, so the
	// allocated field drifts from the sum of balances as trades settle.
	t.realizedPnL += pnlDelta

	p, ok := t.perf[rec.Strategy]
	if !ok {
		p = &strategyPerf{}
		t.perf[rec.Strategy] = p
	}
	p.totalPnL += pnlDelta
	p.trades += trades

	t.checkConservation("update_performance")

	if roi := rec.ROIPct(); roi <= t.cfg.DrawdownThresholdPct && rec.CurrentBalance > 0 {
		recall := rec.CurrentBalance * t.cfg.DrawdownRecallFrac
		t.log.Warn().
			Str("agent_id", agentID).
			Float64("roi_pct", roi).
			Float64("recall_sol", recall).
			Msg("drawdown threshold breached, recalling capital")
		t.recallLocked(agentID, recall, "drawdown_recall")
	}
}

// Rebalance shifts capital from the bottom-quartile performers to the
// top-quartile performers. Each payer whose balance is at least twice the
// minimum allocation contributes a fixed fraction of its balance; the pool
// is split evenly across the receivers. The transfer is zero-sum over
// agent balances and leaves available/allocated untouched.
func (t *Treasury) Rebalance() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.agents) < 2 {
		return
	}

	ranked := make([]*domain.AgentRecord, 0, len(t.agents))
	for _, id := range t.order {
		ranked = append(ranked, t.agents[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ROIPct() > ranked[j].ROIPct()
	})

	q := len(ranked) / 4
	if q < 1 {
		q = 1
	}
	receivers := ranked[:q]
	payers := ranked[len(ranked)-q:]

	var pool float64
	for _, p := range payers {
		if p.CurrentBalance < 2*t.cfg.MinAllocationSOL {
			continue
		}
		contribution := p.CurrentBalance * t.cfg.RebalanceContributionFrac
		p.CurrentBalance -= contribution
		pool += contribution
		t.audit("rebalance_pay", p.ID, contribution)
	}
	if pool == 0 {
		return
	}

	share := pool / float64(len(receivers))
	for _, r := range receivers {
		r.CurrentBalance += share
		t.audit("rebalance_receive", r.ID, share)
	}

	t.checkConservation("rebalance")
	t.log.Info().
		Float64("pool_sol", pool).
		Int("payers", len(payers)).
		Int("receivers", len(receivers)).
		Msg("rebalanced capital")
}

// SyncFromFees absorbs new bot-trading fee inflow. botTradingCumulative is
// the ledger's monotonic bucket total; the positive delta against what has
// already been absorbed is added to the available pool. Idempotent when no
// new fees have arrived.
func (t *Treasury) SyncFromFees(botTradingCumulative float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	delta := botTradingCumulative - t.absorbedFees
	if delta <= 0 {
		return 0
	}

	t.absorbedFees = botTradingCumulative
	t.available += delta
	t.inflow += delta

	t.audit("fee_sync", "", delta)
	t.checkConservation("fee_sync")

	t.log.Info().Float64("delta_sol", delta).Msg("absorbed fee inflow")
	return delta
}

// AutoAllocate distributes the entire available pool across live agents.
// With strategy performance history present, each strategy receives a share
// proportional to its score (floored so losing strategies are never fully
// excluded), split evenly across that strategy's agents. Without history,
// the pool is divided evenly across all agents. Returns the amount moved.
func (t *Treasury) AutoAllocate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.available <= 0 || len(t.agents) == 0 {
		return 0
	}

	byStrategy := make(map[domain.Strategy][]*domain.AgentRecord)
	for _, id := range t.order {
		rec := t.agents[id]
		byStrategy[rec.Strategy] = append(byStrategy[rec.Strategy], rec)
	}

	pool := t.available
	var moved float64

	if len(t.perf) == 0 {
		share := pool / float64(len(t.agents))
		for _, id := range t.order {
			moved += t.creditLocked(t.agents[id], share)
		}
	} else {
		var totalScore float64
		scores := make(map[domain.Strategy]float64)
		for s, agents := range byStrategy {
			if len(agents) == 0 {
				continue
			}
			scores[s] = t.strategyScore(s)
			totalScore += scores[s]
		}
		if totalScore <= 0 {
			return 0
		}
		for _, s := range domain.Strategies {
			agents := byStrategy[s]
			if len(agents) == 0 {
				continue
			}
			strategyShare := pool * scores[s] / totalScore
			perAgent := strategyShare / float64(len(agents))
			for _, rec := range agents {
				moved += t.creditLocked(rec, perAgent)
			}
		}
	}

	t.checkConservation("auto_allocate")
	t.log.Info().Float64("moved_sol", moved).Msg("auto-allocated new capital")
	return moved
}

// strategyScore weights a strategy by its aggregate performance, with a
// floor so negative P&L never zeroes a strategy out of the distribution.
func (t *Treasury) strategyScore(s domain.Strategy) float64 {
	p, ok := t.perf[s]
	if !ok {
		return 0.1
	}
	return math.Max(0.1, p.totalPnL+float64(p.trades)*0.001)
}

func (t *Treasury) creditLocked(rec *domain.AgentRecord, amountSOL float64) float64 {
	if amountSOL <= 0 || amountSOL > t.available {
		if amountSOL > t.available {
			amountSOL = t.available
		}
		if amountSOL <= 0 {
			return 0
		}
	}
	t.available -= amountSOL
	t.allocated += amountSOL
	rec.AllocatedCapital += amountSOL
	rec.CurrentBalance += amountSOL
	t.audit("auto_allocate", rec.ID, amountSOL)
	return amountSOL
}

// Remove recalls the agent's full balance and deletes its record. Returns
// the amount returned to the available pool.
func (t *Treasury) Remove(agentID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.agents[agentID]; !ok {
		return 0
	}
	returned := t.recallLocked(agentID, -1, "terminate")

	delete(t.agents, agentID)
	for i, id := range t.order {
		if id == agentID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return returned
}

// Withdraw moves capital out of the pool entirely, clamped to the
// available balance. Returns the amount withdrawn.
func (t *Treasury) Withdraw(amountSOL float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amountSOL < 0 || amountSOL > t.available {
		amountSOL = t.available
	}
	t.available -= amountSOL
	t.withdrawn += amountSOL

	t.audit("withdraw", "", amountSOL)
	t.checkConservation("withdraw")
	return amountSOL
}

// Get returns a copy of the named agent record.
func (t *Treasury) Get(agentID string) (domain.AgentRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.agents[agentID]
	if !ok {
		return domain.AgentRecord{}, false
	}
	return *rec, true
}

// Agents returns copies of all live agent records in insertion order.
func (t *Treasury) Agents() []domain.AgentRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.AgentRecord, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.agents[id])
	}
	return out
}

// UpdateAgent applies fn to the named record under the treasury lock.
// fn must not call back into the treasury. Used by the spawner for
// lifecycle transitions (naming, pause, cooldown) that do not move capital.
func (t *Treasury) UpdateAgent(agentID string, fn func(*domain.AgentRecord)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.agents[agentID]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

// Available returns the un-allocated capital.
func (t *Treasury) Available() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.available
}

// Snapshot returns a point-in-time view of the pools for reporting.
func (t *Treasury) Snapshot() domain.TreasurySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := domain.TreasurySnapshot{
		Timestamp:    time.Now().UTC(),
		AvailableSOL: t.available,
		AllocatedSOL: t.allocated,
		RealizedPnL:  t.realizedPnL,
		AgentCount:   len(t.agents),
	}
	if total := t.available + t.allocated; total > 0 {
		s.UtilizationPct = t.allocated / total * 100
	}
	if t.inflow > 0 {
		s.AggregateROI = t.realizedPnL / t.inflow * 100
	}
	return s
}

// AgentSnapshots returns leaderboard rows for all live agents, sorted by
// cumulative P&L descending.
func (t *Treasury) AgentSnapshots() []domain.AgentSnapshot {
	t.mu.Lock()
	now := time.Now().UTC()
	out := make([]domain.AgentSnapshot, 0, len(t.order))
	for _, id := range t.order {
		rec := t.agents[id]
		out = append(out, domain.AgentSnapshot{
			Timestamp:    now,
			AgentID:      rec.ID,
			Name:         rec.Name,
			Strategy:     rec.Strategy,
			Status:       rec.Status,
			AllocatedSOL: rec.AllocatedCapital,
			BalanceSOL:   rec.CurrentBalance,
			PnLSOL:       rec.TotalPnL,
			ROIPct:       rec.ROIPct(),
			WinRate:      rec.WinRate(),
			Trades:       rec.Wins + rec.Losses,
		})
	}
	t.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].PnLSOL > out[j].PnLSOL })
	return out
}

// History returns a copy of the audit trail, oldest first.
func (t *Treasury) History() []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]AuditEntry, len(t.history))
	copy(out, t.history)
	return out
}

func (t *Treasury) audit(op, agentID string, amount float64) {
	t.history = append(t.history, AuditEntry{
		Timestamp: time.Now().UTC(),
		Op:        op,
		AgentID:   agentID,
		AmountSOL: amount,
	})
	if len(t.history) > maxAuditEntries {
		t.history = t.history[len(t.history)-maxAuditEntries:]
	}
}

// checkConservation verifies available + allocated == inflow − withdrawn.
// A break is a defect; it is logged loudly and execution continues.
func (t *Treasury) checkConservation(op string) {
	drift := (t.available + t.allocated) - (t.inflow - t.withdrawn)
	if math.Abs(drift) > 1e-6 {
		t.log.Error().
			Str("op", op).
			Float64("drift_sol", drift).
			Float64("available", t.available).
			Float64("allocated", t.allocated).
			Float64("inflow", t.inflow).
			Float64("withdrawn", t.withdrawn).
			Msg("capital conservation violated")
	}
}
