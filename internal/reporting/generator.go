package reporting

import (
	"sort"
	"time"

	"solana-agent-swarm/internal/swarm"
	"solana-agent-swarm/internal/tokenomics"
	"solana-agent-swarm/internal/treasury"
)

// Generator produces reports from live swarm components.
type Generator struct {
	ledger  *tokenomics.Ledger
	tr      *treasury.Treasury
	spawner *swarm.Spawner
	now     func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(ledger *tokenomics.Ledger, tr *treasury.Treasury, spawner *swarm.Spawner) *Generator {
	return &Generator{
		ledger:  ledger,
		tr:      tr,
		spawner: spawner,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete swarm report.
func (g *Generator) Generate() *Report {
	stats := g.ledger.Stats()

	leaderboard := g.tr.AgentSnapshots()
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].PnLSOL > leaderboard[j].PnLSOL
	})

	return &Report{
		GeneratedAt: g.now(),
		Treasury:    g.tr.Snapshot(),
		Swarm:       g.spawner.Status(),
		Fees:        stats,
		Leaderboard: leaderboard,
		Flywheel:    flywheel(stats, g.ledger.Config()),
	}
}

// flywheel estimates fee compounding from cumulative bucket totals.
func flywheel(stats tokenomics.FeeStats, cfg tokenomics.Config) FlywheelMetrics {
	m := FlywheelMetrics{
		BotTradingCapitalSOL: stats.BotTradingTotal,
	}

	if cfg.AvgTradeSizeSOL > 0 {
		m.TradesEnabled = int(stats.BotTradingTotal / cfg.AvgTradeSizeSOL)
	}
	m.PotentialFeesSOL = float64(m.TradesEnabled) * cfg.AvgTradeSizeSOL * cfg.FeeRate()

	base := stats.BotTradingTotal
	if base < 0.001 {
		base = 0.001
	}
	m.Multiplier = (stats.BotTradingTotal + m.PotentialFeesSOL) / base

	if cfg.InfraDailyUSD > 0 {
		m.InfraRunwayDays = stats.InfrastructureBalance * cfg.SOLPriceUSD / cfg.InfraDailyUSD
	}
	m.DevHoursFunded = stats.DevelopmentTotal * cfg.SOLPriceUSD / 50 // $50/hr

	return m
}
