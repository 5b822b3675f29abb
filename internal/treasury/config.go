package treasury

// Config bounds the allocator's behavior. Zero values are not usable;
// callers start from DefaultConfig.
type Config struct {
	// MinAllocationSOL rejects dust allocations below this amount.
	MinAllocationSOL float64

	// MaxAllocationPct caps a single allocation as a fraction of total
	// treasury capital (available + allocated). Oversized requests are
	// clamped, not rejected.
	MaxAllocationPct float64

	// MaxAgents caps the live agent population.
	MaxAgents int

	// DrawdownThresholdPct is the ROI (percent) at or below which an
	// agent triggers an automatic partial recall.
	DrawdownThresholdPct float64

	// DrawdownRecallFrac is the fraction of the breaching agent's
	// current balance recalled to the available pool.
	DrawdownRecallFrac float64

	// RebalanceContributionFrac is the fraction of each payer's balance
	// contributed during a rebalance pass.
	RebalanceContributionFrac float64
}

// DefaultConfig mirrors production thresholds.
func DefaultConfig() Config {
	return Config{
		MinAllocationSOL:          0.01,
		MaxAllocationPct:          0.20,
		MaxAgents:                 100,
		DrawdownThresholdPct:      -15,
		DrawdownRecallFrac:        0.5,
		RebalanceContributionFrac: 0.10,
	}
}
