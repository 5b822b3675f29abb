package arbiter

// Config holds the trading thresholds for signal generation.
type Config struct {
	// Position size bounds, in SOL.
	MinTradeSOL float64
	MaxTradeSOL float64

	// Exit thresholds, in percent of entry.
	StopLossPct   float64
	TakeProfitPct float64

	// Tradeability gates.
	MinLiquidityUSD float64
	MinOverallScore float64

	// MaxSignalHistory bounds the retained signal history.
	MaxSignalHistory int
}

// DefaultConfig mirrors production trading thresholds.
func DefaultConfig() Config {
	return Config{
		MinTradeSOL:      0.01,
		MaxTradeSOL:      0.05,
		StopLossPct:      15,
		TakeProfitPct:    50,
		MinLiquidityUSD:  10000,
		MinOverallScore:  60,
		MaxSignalHistory: 500,
	}
}
