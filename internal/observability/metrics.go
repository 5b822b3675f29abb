// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the swarm daemon.
type Metrics struct {
	// Cycle metrics
	CyclesTotal         prometheus.Counter
	CycleErrors         prometheus.Counter
	CandidatesEvaluated prometheus.Counter
	SignalsEmitted      *prometheus.CounterVec
	TradesExecuted      *prometheus.CounterVec
	CycleDuration       prometheus.Histogram

	// Fee metrics
	FeesCollectedSOL  prometheus.Counter
	FeesAbsorbedSOL   prometheus.Counter
	DistributionCount prometheus.Counter

	// Treasury metrics
	TreasuryAvailableSOL prometheus.Gauge
	TreasuryAllocatedSOL prometheus.Gauge
	TreasuryRealizedPnL  prometheus.Gauge

	// Swarm metrics
	AgentsTotal   prometheus.Gauge
	AgentsActive  prometheus.Gauge
	AgentsSpawned prometheus.Counter
	AgentsPruned  prometheus.Counter

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "agent_swarm"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total evaluation cycles run",
		}),
		CycleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Total evaluation cycles that failed",
		}),
		CandidatesEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_evaluated_total",
			Help:      "Total token candidates scored",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_emitted_total",
			Help:      "Total trade signals emitted by action",
		}, []string{"action"}),
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total trades executed by action",
		}, []string{"action"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Evaluation cycle duration",
			Buckets:   prometheus.DefBuckets,
		}),
		FeesCollectedSOL: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_sol_total",
			Help:      "Cumulative trade fees collected in SOL",
		}),
		FeesAbsorbedSOL: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_absorbed_sol_total",
			Help:      "Cumulative bot-trading fees absorbed into the treasury in SOL",
		}),
		DistributionCount: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_distributions_total",
			Help:      "Total fee distribution events",
		}),
		TreasuryAvailableSOL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "treasury_available_sol",
			Help:      "Unallocated treasury capital in SOL",
		}),
		TreasuryAllocatedSOL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "treasury_allocated_sol",
			Help:      "Capital allocated to agents in SOL",
		}),
		TreasuryRealizedPnL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "treasury_realized_pnl_sol",
			Help:      "Aggregate realized P&L in SOL",
		}),
		AgentsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_total",
			Help:      "Current agent population",
		}),
		AgentsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_active",
			Help:      "Agents currently eligible to trade",
		}),
		AgentsSpawned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agents_spawned_total",
			Help:      "Total agents spawned",
		}),
		AgentsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agents_pruned_total",
			Help:      "Total agents pruned for underperformance",
		}),
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix time of the last successful cycle",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
