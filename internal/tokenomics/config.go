// Package tokenomics implements the trade-fee collector and the four-bucket
// treasury ledger that funds the agent swarm.
package tokenomics

import "fmt"

// Config holds the fee rate and the four-way bucket split.
// Percentages must sum to exactly 100; this is validated once when the
// ledger is constructed and is fatal on failure.
type Config struct {
	// FeeBps is the fee charged on every trade, in basis points.
	FeeBps int

	// Bucket split, in whole percent.
	BotTradingPct     int
	InfrastructurePct int
	DevelopmentPct    int
	BuilderPct        int

	// Flywheel estimates used by reporting only. Illustrative, not
	// load-bearing.
	SOLPriceUSD      float64
	AvgTradeSizeSOL  float64
	InfraDailyUSD    float64
}

// DefaultConfig returns the standard 2% fee with an even 25/25/25/25 split.
func DefaultConfig() Config {
	return Config{
		FeeBps:            200,
		BotTradingPct:     25,
		InfrastructurePct: 25,
		DevelopmentPct:    25,
		BuilderPct:        25,
		SOLPriceUSD:       150,
		AvgTradeSizeSOL:   0.03,
		InfraDailyUSD:     10,
	}
}

// Validate checks the bucket percentages sum to 100 and the fee rate is sane.
func (c Config) Validate() error {
	if c.FeeBps < 0 || c.FeeBps > 10000 {
		return fmt.Errorf("fee bps out of range: %d", c.FeeBps)
	}
	total := c.BotTradingPct + c.InfrastructurePct + c.DevelopmentPct + c.BuilderPct
	if total != 100 {
		return fmt.Errorf("bucket percentages must sum to 100, got %d", total)
	}
	return nil
}

// FeeRate returns the fee rate as a fraction (200 bps -> 0.02).
func (c Config) FeeRate() float64 {
	return float64(c.FeeBps) / 10000
}
