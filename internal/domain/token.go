package domain

import "time"

// TokenCandidate is a token surfaced by the external discovery collaborator.
type TokenCandidate struct {
	Mint   string // token mint address
	Symbol string
	Name   string

	PriceUSD     float64
	MarketCapUSD float64
	LiquidityUSD float64
	Volume24hUSD float64

	PriceChange5m  float64 // percent
	PriceChange1h  float64 // percent
	PriceChange24h float64 // percent

	DiscoveredAt time.Time
}

// SafetyResult is the security vetting verdict from the external safety
// collaborator. A nil SafetyResult means no data and scores fail safe.
type SafetyResult struct {
	Mint string

	IsHoneypot    bool
	HoneypotScore float64 // 0-1, lower is safer
	IsMintable    bool
	IsFreezable   bool

	Top10HolderPct float64

	Passed bool
}

// SentimentResult is the social sentiment verdict from the external
// sentiment collaborator. Score is on a -10..+10 scale.
type SentimentResult struct {
	Mint string

	Score         float64
	TotalMentions int
	IsTrending    bool
}
