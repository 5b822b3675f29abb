package orchestrator

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/arbiter"
	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/feeds"
	"solana-agent-swarm/internal/storage/memory"
	"solana-agent-swarm/internal/swarm"
	"solana-agent-swarm/internal/tokenomics"
	"solana-agent-swarm/internal/treasury"
)

const testMint = "So11111111111111111111111111111111111111112"

// strongCandidate scores high on every axis so the entry path is
// deterministic regardless of strategy weights.
func strongCandidate() *domain.TokenCandidate {
	return &domain.TokenCandidate{
		Mint:          testMint,
		Symbol:        "PUMP",
		Name:          "Pump Token",
		PriceUSD:      0.001,
		MarketCapUSD:  80000,
		LiquidityUSD:  60000,
		Volume24hUSD:  150000,
		PriceChange5m: 20,
		PriceChange1h: 30,
	}
}

type testRig struct {
	ledger   *tokenomics.Ledger
	tr       *treasury.Treasury
	spawner  *swarm.Spawner
	source   *feeds.StaticSource
	executor *feeds.SimExecutor
	signals  *memory.SignalStore
	fees     *memory.FeeDistributionStore
	agents   *memory.AgentSnapshotStore
	snaps    *memory.TreasurySnapshotStore
	orch     *Orchestrator
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	log := zerolog.Nop()

	ledger, err := tokenomics.NewLedger(tokenomics.DefaultConfig(), log)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	tr := treasury.New(treasury.DefaultConfig(), log)
	tr.Seed(1.0)

	spawner := swarm.New(swarm.DefaultConfig(), tr, log)
	if res := spawner.Spawn(domain.StrategyMomentum, 0.05); res.Rejected() {
		t.Fatalf("spawn rejected: %v", res.Reject)
	}

	rig := &testRig{
		ledger:   ledger,
		tr:       tr,
		spawner:  spawner,
		source:   feeds.NewStaticSource([]*domain.TokenCandidate{strongCandidate()}),
		executor: feeds.NewSimExecutor(7),
		signals:  memory.NewSignalStore(),
		fees:     memory.NewFeeDistributionStore(),
		agents:   memory.NewAgentSnapshotStore(),
		snaps:    memory.NewTreasurySnapshotStore(),
	}

	safety := feeds.NewStaticSafety(map[string]*domain.SafetyResult{
		testMint: {Mint: testMint, Passed: true, Top10HolderPct: 20},
	})
	sentiment := feeds.NewStaticSentiment(map[string]*domain.SentimentResult{
		testMint: {Mint: testMint, Score: 6, TotalMentions: 150, IsTrending: true},
	})

	orch, err := New(Options{
		Ledger:                ledger,
		Treasury:              tr,
		Spawner:               spawner,
		Source:                rig.source,
		Safety:                safety,
		Sentiment:             sentiment,
		Executor:              rig.executor,
		FeeStore:              rig.fees,
		SignalStore:           rig.signals,
		AgentSnapshotStore:    rig.agents,
		TreasurySnapshotStore: rig.snaps,
		ArbiterConfig:         arbiter.DefaultConfig(),
		Log:                   log,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rig.orch = orch
	return rig
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	if err == nil {
		t.Fatal("expected error for missing components")
	}
}

func TestCycleEntryCollectsFees(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	res, err := rig.orch.RunCycle(ctx)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if res.CandidatesEvaluated != 1 {
		t.Errorf("candidates = %d, want 1", res.CandidatesEvaluated)
	}
	if res.SignalsEmitted != 1 {
		t.Fatalf("signals = %d, want 1", res.SignalsEmitted)
	}
	if res.TradesExecuted != 1 {
		t.Fatalf("trades = %d, want 1", res.TradesExecuted)
	}

	// 0.05 SOL buy at 2% fee
	wantFee := 0.05 * 0.02
	if math.Abs(res.FeesCollectedSOL-wantFee) > 1e-9 {
		t.Errorf("fees = %v, want %v", res.FeesCollectedSOL, wantFee)
	}

	sigs, err := rig.signals.GetByMint(ctx, testMint)
	if err != nil {
		t.Fatalf("GetByMint: %v", err)
	}
	if len(sigs) != 1 || sigs[0].Action != domain.ActionBuy {
		t.Fatalf("stored signals = %+v, want one buy", sigs)
	}

	pos, _ := rig.executor.OpenPosition(ctx, testMint)
	if pos == nil {
		t.Fatal("expected open position after buy")
	}

	// Bot-trading share (25% of fee) was absorbed into the treasury.
	wantAvailable := 1.0 - 0.05 + wantFee*0.25
	if math.Abs(rig.tr.Available()-wantAvailable) > 1e-9 {
		t.Errorf("available = %v, want %v", rig.tr.Available(), wantAvailable)
	}
}

func TestCycleExitRecordsTrade(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	if _, err := rig.orch.RunCycle(ctx); err != nil {
		t.Fatalf("entry cycle: %v", err)
	}

	// Tank the position below the stop-loss so the next cycle exits.
	rig.executor.MarkPrice(testMint, -20)

	res, err := rig.orch.RunCycle(ctx)
	if err != nil {
		t.Fatalf("exit cycle: %v", err)
	}
	if res.TradesExecuted != 1 {
		t.Fatalf("trades = %d, want 1", res.TradesExecuted)
	}

	pos, _ := rig.executor.OpenPosition(ctx, testMint)
	if pos != nil {
		t.Errorf("expected flat after exit, got %+v", pos)
	}

	sigs, _ := rig.signals.GetByMint(ctx, testMint)
	if len(sigs) != 2 {
		t.Fatalf("stored signals = %d, want 2", len(sigs))
	}
	if sigs[1].Action != domain.ActionSell {
		t.Errorf("second signal action = %s, want sell", sigs[1].Action)
	}

	// The sell was attributed to the agent.
	agents := rig.tr.Agents()
	if len(agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(agents))
	}
	if got := agents[0].Wins + agents[0].Losses; got != 1 {
		t.Errorf("recorded trades = %d, want 1", got)
	}
}

func TestCycleWithoutAgentsEmitsNothing(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// Terminate the only agent; the cycle has nobody to trade for.
	agents := rig.tr.Agents()
	rig.spawner.Terminate(agents[0].ID)

	res, err := rig.orch.RunCycle(ctx)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if res.SignalsEmitted != 0 || res.TradesExecuted != 0 {
		t.Errorf("expected idle cycle, got %+v", res)
	}
}

func TestMaintenanceGrowsPopulation(t *testing.T) {
	rig := newTestRig(t)

	before := len(rig.tr.Agents())
	rig.orch.RunMaintenance(context.Background())
	after := len(rig.tr.Agents())

	if after <= before {
		t.Errorf("population %d -> %d, expected growth with idle capital", before, after)
	}
}

func TestSnapshotPersists(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.orch.RunSnapshot(ctx)

	snap, err := rig.snaps.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if snap.AgentCount != 1 {
		t.Errorf("snapshot agent count = %d, want 1", snap.AgentCount)
	}

	agents := rig.tr.Agents()
	stored, err := rig.agents.GetByAgentID(ctx, agents[0].ID)
	if err != nil {
		t.Fatalf("GetByAgentID: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored agent snapshots = %d, want 1", len(stored))
	}
}
