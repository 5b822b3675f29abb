// Package main runs the agent swarm daemon: discovery feed, per-cycle
// scoring and execution, fee collection, and treasury maintenance loops.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/arbiter"
	"solana-agent-swarm/internal/domain"
	"solana-agent-swarm/internal/feeds"
	"solana-agent-swarm/internal/observability"
	"solana-agent-swarm/internal/orchestrator"
	"solana-agent-swarm/internal/reporting"
	"solana-agent-swarm/internal/storage"
	chstore "solana-agent-swarm/internal/storage/clickhouse"
	"solana-agent-swarm/internal/storage/memory"
	"solana-agent-swarm/internal/storage/migrations"
	pgstore "solana-agent-swarm/internal/storage/postgres"
	"solana-agent-swarm/internal/swarm"
	"solana-agent-swarm/internal/tokenomics"
	"solana-agent-swarm/internal/treasury"
)

const version = "1.0.0"

// swarmStores holds the persistence backends selected at startup.
type swarmStores struct {
	fees      storage.FeeDistributionStore
	signals   storage.SignalStore
	agents    storage.AgentSnapshotStore
	treasurys storage.TreasurySnapshotStore
}

func main() {
	// Load .env before flag parsing so env defaults pick it up
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}

	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SWARM_WS_ENDPOINT"), "Candidate feed WebSocket endpoint (empty: built-in paper feed)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", envBool("SWARM_USE_MEMORY", true), "Use in-memory storage instead of PostgreSQL/ClickHouse")
	seedSOL := flag.Float64("seed-sol", envFloat("SWARM_SEED_SOL", 1.0), "Initial treasury capital in SOL")
	cycleInterval := flag.Duration("cycle-interval", 10*time.Second, "Evaluation cycle interval")
	maintenanceInterval := flag.Duration("maintenance-interval", 1*time.Minute, "Auto-scale / auto-allocate interval")
	rebalanceInterval := flag.Duration("rebalance-interval", 1*time.Hour, "Capital rebalance interval")
	snapshotInterval := flag.Duration("snapshot-interval", 5*time.Minute, "State snapshot interval")
	reportInterval := flag.Duration("report-interval", 15*time.Minute, "Markdown report interval (0 disables)")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		log.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *seedSOL <= 0 {
		log.Fatal().Float64("seed_sol", *seedSOL).Msg("--seed-sol must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core components; config errors are fatal at startup.
	ledger, err := tokenomics.NewLedger(tokenomics.DefaultConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid tokenomics config")
	}

	tr := treasury.New(treasury.DefaultConfig(), log)
	tr.Seed(*seedSOL)
	spawner := swarm.New(swarm.DefaultConfig(), tr, log)

	// Persistence
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create stores")
	}
	defer cleanup()

	// Collaborators
	source, sourceCleanup, err := createSource(ctx, *wsEndpoint, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create candidate source")
	}
	defer sourceCleanup()

	safety, sentiment := paperVetting()
	executor := feeds.NewSimExecutor(uint64(time.Now().UnixNano()))

	// Prometheus metrics endpoint
	metrics := observability.NewMetrics("")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()

	// Bootstrap the initial population.
	spawned, _ := spawner.AutoScale()
	log.Info().
		Str("version", version).
		Int("agents", spawned).
		Float64("seed_sol", *seedSOL).
		Msg("swarm initialized")

	orch, err := orchestrator.New(orchestrator.Options{
		Ledger:                ledger,
		Treasury:              tr,
		Spawner:               spawner,
		Source:                source,
		Safety:                safety,
		Sentiment:             sentiment,
		Executor:              executor,
		FeeStore:              stores.fees,
		SignalStore:           stores.signals,
		AgentSnapshotStore:    stores.agents,
		TreasurySnapshotStore: stores.treasurys,
		ArbiterConfig:         arbiter.DefaultConfig(),
		Metrics:               metrics,
		CycleInterval:         *cycleInterval,
		MaintenanceInterval:   *maintenanceInterval,
		RebalanceInterval:     *rebalanceInterval,
		SnapshotInterval:      *snapshotInterval,
		Log:                   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create orchestrator")
	}

	// Periodic markdown report
	if *reportInterval > 0 {
		gen := reporting.NewGenerator(ledger, tr, spawner)
		go reportLoop(ctx, gen, *outputDir, *reportInterval, log)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	if err := orch.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("orchestrator error")
	}

	log.Info().Msg("shutdown complete")
}

// createStores selects memory or durable backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*swarmStores, func(), error) {
	if useMemory {
		stores := &swarmStores{
			fees:      memory.NewFeeDistributionStore(),
			signals:   memory.NewSignalStore(),
			agents:    memory.NewAgentSnapshotStore(),
			treasurys: memory.NewTreasurySnapshotStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL for snapshot tables
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse for the analytic history tables
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &swarmStores{
		fees:      chstore.NewFeeDistributionStore(chConn),
		signals:   chstore.NewSignalStore(chConn),
		agents:    pgstore.NewAgentSnapshotStore(pool),
		treasurys: pgstore.NewTreasurySnapshotStore(pool),
	}

	cleanup := func() {
		pool.Close()
		chConn.Close()
	}
	return stores, cleanup, nil
}

// createSource returns the live WebSocket feed, or the built-in paper
// feed when no endpoint is configured.
func createSource(ctx context.Context, wsEndpoint string, log zerolog.Logger) (feeds.CandidateSource, func(), error) {
	if wsEndpoint != "" {
		feed, err := feeds.NewWSCandidateFeed(ctx, wsEndpoint, nil, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect candidate feed: %w", err)
		}
		return feed, func() { feed.Close() }, nil
	}

	log.Info().Msg("no WebSocket endpoint configured, running paper feed")
	return feeds.NewStaticSource(paperCandidates()), func() {}, nil
}

// paperCandidates is a small fixed batch for paper runs.
func paperCandidates() []*domain.TokenCandidate {
	return []*domain.TokenCandidate{
		{
			Mint: "So11111111111111111111111111111111111111112", Symbol: "WSOL", Name: "Wrapped SOL",
			PriceUSD: 150, MarketCapUSD: 70_000_000_000, LiquidityUSD: 500_000, Volume24hUSD: 2_000_000,
			PriceChange5m: 12, PriceChange1h: 25, DiscoveredAt: time.Now(),
		},
		{
			Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Name: "USD Coin",
			PriceUSD: 1, MarketCapUSD: 30_000_000_000, LiquidityUSD: 900_000, Volume24hUSD: 5_000_000,
			DiscoveredAt: time.Now(),
		},
	}
}

// paperVetting returns benign fixed safety/sentiment for the paper feed.
func paperVetting() (feeds.SafetyChecker, feeds.SentimentProvider) {
	safety := make(map[string]*domain.SafetyResult)
	sentiment := make(map[string]*domain.SentimentResult)
	for _, c := range paperCandidates() {
		safety[c.Mint] = &domain.SafetyResult{Mint: c.Mint, Passed: true, Top10HolderPct: 25}
		sentiment[c.Mint] = &domain.SentimentResult{Mint: c.Mint, Score: 4, TotalMentions: 120, IsTrending: true}
	}
	return feeds.NewStaticSafety(safety), feeds.NewStaticSentiment(sentiment)
}

// reportLoop writes the markdown report and leaderboard CSV periodically.
func reportLoop(ctx context.Context, gen *reporting.Generator, outputDir string, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				log.Warn().Err(err).Msg("create output dir failed")
				continue
			}
			report := gen.Generate()
			if err := os.WriteFile(outputDir+"/SWARM_REPORT.md", []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
				log.Warn().Err(err).Msg("write report failed")
			}
			if err := os.WriteFile(outputDir+"/leaderboard.csv", []byte(reporting.RenderLeaderboardCSV(report.Leaderboard)), 0o644); err != nil {
				log.Warn().Err(err).Msg("write leaderboard failed")
			}
		}
	}
}

// envBool reads a boolean env var with a default.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envFloat reads a float env var with a default.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
