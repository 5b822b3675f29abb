// Package orchestrator coordinates the swarm's evaluation cycle and
// periodic maintenance. Flow per cycle: discovery → concurrent vetting →
// scoring → execution → fee collection → treasury sync.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/arbiter"
	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/feeds"
	"solana-agent-swarm/internal/observability"
	"solana-agent-swarm/internal/storage"
	"solana-agent-swarm/internal/swarm"
	"solana-agent-swarm/internal/tokenomics"
	"solana-agent-swarm/internal/treasury"
)

// vettingConcurrency bounds parallel safety/sentiment lookups per cycle.
const vettingConcurrency = 8

// Options for creating Orchestrator.
type Options struct {
	// Required core components
	Ledger   *tokenomics.Ledger
	Treasury *treasury.Treasury
	Spawner  *swarm.Spawner

	// Required collaborators
	Source    feeds.CandidateSource
	Safety    feeds.SafetyChecker
	Sentiment feeds.SentimentProvider
	Executor  feeds.Executor

	// Optional durable stores; nil skips persistence of that record type
	FeeStore              storage.FeeDistributionStore
	SignalStore           storage.SignalStore
	AgentSnapshotStore    storage.AgentSnapshotStore
	TreasurySnapshotStore storage.TreasurySnapshotStore

	// Arbiter scoring configuration, shared across strategies
	ArbiterConfig arbiter.Config

	// Optional Prometheus metrics
	Metrics *observability.Metrics

	// Loop intervals; zero disables the loop
	CycleInterval       time.Duration
	MaintenanceInterval time.Duration
	RebalanceInterval   time.Duration
	SnapshotInterval    time.Duration

	Log zerolog.Logger
}

// Orchestrator drives the evaluation cycle and background maintenance.
type Orchestrator struct {
	ledger   *tokenomics.Ledger
	tr       *treasury.Treasury
	spawner  *swarm.Spawner
	source   feeds.CandidateSource
	safety   feeds.SafetyChecker
	sent     feeds.SentimentProvider
	executor feeds.Executor

	feeStore         storage.FeeDistributionStore
	signalStore      storage.SignalStore
	agentSnapStore   storage.AgentSnapshotStore
	treasurySnapshot storage.TreasurySnapshotStore

	arbiterCfg arbiter.Config
	arbiters   map[domain.Strategy]*arbiter.Arbiter
	arbitersMu sync.Mutex

	metrics *observability.Metrics

	cycleInterval       time.Duration
	maintenanceInterval time.Duration
	rebalanceInterval   time.Duration
	snapshotInterval    time.Duration

	// next rotates signal assignment across eligible agents
	next int

	log zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Ledger == nil || opts.Treasury == nil || opts.Spawner == nil {
		return nil, fmt.Errorf("ledger, treasury and spawner are required")
	}
	if opts.Source == nil || opts.Safety == nil || opts.Sentiment == nil || opts.Executor == nil {
		return nil, fmt.Errorf("source, safety, sentiment and executor collaborators are required")
	}

	return &Orchestrator{
		ledger:              opts.Ledger,
		tr:                  opts.Treasury,
		spawner:             opts.Spawner,
		source:              opts.Source,
		safety:              opts.Safety,
		sent:                opts.Sentiment,
		executor:            opts.Executor,
		feeStore:            opts.FeeStore,
		signalStore:         opts.SignalStore,
		agentSnapStore:      opts.AgentSnapshotStore,
		treasurySnapshot:    opts.TreasurySnapshotStore,
		arbiterCfg:          opts.ArbiterConfig,
		arbiters:            make(map[domain.Strategy]*arbiter.Arbiter),
		metrics:             opts.Metrics,
		cycleInterval:       opts.CycleInterval,
		maintenanceInterval: opts.MaintenanceInterval,
		rebalanceInterval:   opts.RebalanceInterval,
		snapshotInterval:    opts.SnapshotInterval,
		log:                 opts.Log.With().Str("component", "orchestrator").Logger(),
	}, nil
}

// CycleResult summarizes one evaluation cycle.
type CycleResult struct {
	CandidatesEvaluated int
	SignalsEmitted      int
	TradesExecuted      int
	FeesCollectedSOL    float64
	Errors              []string
}

// vetted pairs a candidate with its fetched safety/sentiment data.
type vetted struct {
	token     *domain.TokenCandidate
	safety    *domain.SafetyResult
	sentiment *domain.SentimentResult
}

// RunCycle evaluates the current candidate batch once. Collaborator
// fetches run concurrently; all state mutation is applied sequentially
// afterwards so the treasury lock is never held across I/O.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{}
	started := time.Now()

	candidates, err := o.source.Candidates(ctx)
	if err != nil {
		if o.metrics != nil {
			o.metrics.CycleErrors.Inc()
		}
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	result.CandidatesEvaluated = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	inputs := o.vetCandidates(ctx, candidates)

	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		agent, ok := o.nextEligibleAgent()
		if !ok {
			break // no agents can trade; skip the rest of the batch
		}

		arb := o.arbiterFor(agent.Strategy)
		analysis := arb.Evaluate(*in.token, in.safety, in.sentiment)

		position, err := o.executor.OpenPosition(ctx, in.token.Mint)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("position %s: %v", in.token.Mint, err))
			continue
		}

		sig := arb.Signal(analysis, position)
		if sig == nil {
			continue
		}
		result.SignalsEmitted++
		if o.metrics != nil {
			o.metrics.SignalsEmitted.WithLabelValues(string(sig.Action)).Inc()
		}
		o.persistSignal(ctx, sig)

		outcome, err := o.executor.Execute(ctx, sig)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("execute %s %s: %v", sig.Action, sig.Mint, err))
			continue
		}
		result.TradesExecuted++
		if o.metrics != nil {
			o.metrics.TradesExecuted.WithLabelValues(string(sig.Action)).Inc()
		}
		outcome.AgentID = agent.ID

		if sig.Action == domain.ActionSell {
			o.spawner.RecordTradeResult(agent.ID, outcome.PnLSOL, outcome.IsWin)
		}

		if outcome.NotionalSOL > 0 {
			dist := o.ledger.Collect(outcome.NotionalSOL, sig.SignalID)
			result.FeesCollectedSOL += dist.TotalFeeSOL
			if o.metrics != nil {
				o.metrics.DistributionCount.Inc()
			}
			o.persistFee(ctx, &dist)
		}

		o.log.Debug().
			Str("agent_id", agent.ID).
			Str("mint", sig.Mint).
			Str("action", string(sig.Action)).
			Float64("amount_sol", sig.AmountSOL).
			Float64("pnl_sol", outcome.PnLSOL).
			Msg("trade executed")
	}

	// Absorb the bot-trading bucket growth into the treasury.
	absorbed := o.tr.SyncFromFees(o.ledger.BotTradingCumulative())
	if absorbed > 0 {
		o.log.Info().Float64("absorbed_sol", absorbed).Msg("fees absorbed into treasury")
	}

	o.observeCycle(result, absorbed, time.Since(started))

	o.log.Info().
		Int("candidates", result.CandidatesEvaluated).
		Int("signals", result.SignalsEmitted).
		Int("trades", result.TradesExecuted).
		Float64("fees_sol", result.FeesCollectedSOL).
		Msg("cycle complete")

	return result, nil
}

// observeCycle records cycle counters and current treasury gauges.
func (o *Orchestrator) observeCycle(result *CycleResult, absorbedSOL float64, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}

	o.metrics.CyclesTotal.Inc()
	o.metrics.CandidatesEvaluated.Add(float64(result.CandidatesEvaluated))
	o.metrics.FeesCollectedSOL.Add(result.FeesCollectedSOL)
	o.metrics.FeesAbsorbedSOL.Add(absorbedSOL)
	o.metrics.CycleDuration.Observe(elapsed.Seconds())
	o.metrics.LastSuccessfulCycle.SetToCurrentTime()

	snap := o.tr.Snapshot()
	o.metrics.TreasuryAvailableSOL.Set(snap.AvailableSOL)
	o.metrics.TreasuryAllocatedSOL.Set(snap.AllocatedSOL)
	o.metrics.TreasuryRealizedPnL.Set(snap.RealizedPnL)

	status := o.spawner.Status()
	o.metrics.AgentsTotal.Set(float64(status.TotalAgents))
	o.metrics.AgentsActive.Set(float64(status.ActiveAgents))
}

// vetCandidates fetches safety and sentiment for each candidate with
// bounded concurrency, preserving input order.
func (o *Orchestrator) vetCandidates(ctx context.Context, candidates []*domain.TokenCandidate) []vetted {
	inputs := make([]vetted, len(candidates))
	sem := make(chan struct{}, vettingConcurrency)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c *domain.TokenCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			in := vetted{token: c}

			safety, err := o.safety.Check(ctx, c.Mint)
			if err != nil {
				o.log.Warn().Err(err).Str("mint", c.Mint).Msg("safety check failed, scoring fails safe")
			} else {
				in.safety = safety
			}

			sentiment, err := o.sent.Sentiment(ctx, c.Mint)
			if err != nil {
				o.log.Warn().Err(err).Str("mint", c.Mint).Msg("sentiment fetch failed, using neutral")
			} else {
				in.sentiment = sentiment
			}

			inputs[i] = in
		}(i, c)
	}

	wg.Wait()
	return inputs
}

// nextEligibleAgent rotates through agents able to trade right now.
func (o *Orchestrator) nextEligibleAgent() (domain.AgentRecord, bool) {
	agents := o.tr.Agents()
	if len(agents) == 0 {
		return domain.AgentRecord{}, false
	}

	now := time.Now().UTC()
	for i := 0; i < len(agents); i++ {
		a := agents[(o.next+i)%len(agents)]
		if a.IsActive(now) {
			o.next = (o.next + i + 1) % len(agents)
			return a, true
		}
	}
	return domain.AgentRecord{}, false
}

// arbiterFor returns the per-strategy arbiter, creating it on first use.
func (o *Orchestrator) arbiterFor(strategy domain.Strategy) *arbiter.Arbiter {
	o.arbitersMu.Lock()
	defer o.arbitersMu.Unlock()

	if arb, ok := o.arbiters[strategy]; ok {
		return arb
	}
	arb := arbiter.New(o.arbiterCfg, strategy, o.log)
	o.arbiters[strategy] = arb
	return arb
}

// RunMaintenance performs one auto-scale and auto-allocate pass.
func (o *Orchestrator) RunMaintenance(ctx context.Context) {
	spawned, pruned := o.spawner.AutoScale()
	allocated := o.tr.AutoAllocate()

	if o.metrics != nil {
		o.metrics.AgentsSpawned.Add(float64(spawned))
		o.metrics.AgentsPruned.Add(float64(pruned))
	}

	o.log.Info().
		Int("spawned", spawned).
		Int("pruned", pruned).
		Float64("allocated_sol", allocated).
		Msg("maintenance pass complete")
}

// RunSnapshot persists current treasury and agent state. Snapshots are
// taken under the treasury lock but stored after release.
func (o *Orchestrator) RunSnapshot(ctx context.Context) {
	snap := o.tr.Snapshot()
	agents := o.tr.AgentSnapshots()

	if o.treasurySnapshot != nil {
		if err := o.treasurySnapshot.Insert(ctx, &snap); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			o.log.Warn().Err(err).Msg("persist treasury snapshot failed")
		}
	}

	if o.agentSnapStore != nil && len(agents) > 0 {
		snaps := make([]*domain.AgentSnapshot, len(agents))
		for i := range agents {
			snaps[i] = &agents[i]
		}
		if err := o.agentSnapStore.InsertBulk(ctx, snaps); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			o.log.Warn().Err(err).Msg("persist agent snapshots failed")
		}
	}
}

// Run drives the loops until ctx is cancelled. Shutdown happens between
// cycles; an in-flight cycle is allowed to finish.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info().
		Dur("cycle", o.cycleInterval).
		Dur("maintenance", o.maintenanceInterval).
		Dur("rebalance", o.rebalanceInterval).
		Dur("snapshot", o.snapshotInterval).
		Msg("orchestrator started")

	cycleC := tickChan(o.cycleInterval)
	maintC := tickChan(o.maintenanceInterval)
	rebalC := tickChan(o.rebalanceInterval)
	snapC := tickChan(o.snapshotInterval)

	for {
		select {
		case <-ctx.Done():
			o.log.Info().Msg("orchestrator stopped")
			return ctx.Err()

		case <-cycleC:
			if _, err := o.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.log.Error().Err(err).Msg("cycle failed")
			}

		case <-maintC:
			o.RunMaintenance(ctx)

		case <-rebalC:
			o.tr.Rebalance()

		case <-snapC:
			o.RunSnapshot(ctx)
		}
	}
}

// tickChan returns a ticker channel, or nil (never fires) when d is zero.
func tickChan(d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return time.NewTicker(d).C
}

// persistSignal stores a signal when a store is configured.
func (o *Orchestrator) persistSignal(ctx context.Context, sig *domain.TradeSignal) {
	if o.signalStore == nil {
		return
	}
	if err := o.signalStore.Insert(ctx, sig); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Warn().Err(err).Str("signal_id", sig.SignalID).Msg("persist signal failed")
	}
}

// persistFee stores a fee distribution when a store is configured.
func (o *Orchestrator) persistFee(ctx context.Context, dist *domain.FeeDistribution) {
	if o.feeStore == nil {
		return
	}
	if err := o.feeStore.Insert(ctx, dist); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Warn().Err(err).Str("trade_id", dist.SourceTradeID).Msg("persist fee distribution failed")
	}
}
