package domain

import "time"

// TradeAction is the decision produced by the arbiter for one candidate.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
	ActionHold TradeAction = "hold"
	ActionSkip TradeAction = "skip"
)

// RiskTier labels the overall risk of acting on a signal.
type RiskTier string

const (
	RiskMedium  RiskTier = "medium"
	RiskHigh    RiskTier = "high"
	RiskExtreme RiskTier = "extreme"
)

// TokenAnalysis is the per-cycle scoring artifact for one candidate.
// Scores are on a 0-100 scale. It is not persisted beyond a bounded
// history kept for reporting.
type TokenAnalysis struct {
	Token     TokenCandidate
	Safety    *SafetyResult
	Sentiment *SentimentResult

	SafetyScore    float64
	SentimentScore float64
	MomentumScore  float64
	OverallScore   float64

	Tradeable bool
	Reasons   []string
}

// TradeSignal is emitted to the execution collaborator when the arbiter
// decides to act.
type TradeSignal struct {
	SignalID string
	Mint     string
	Symbol   string
	Action   TradeAction

	Confidence    float64 // 0-1
	AmountSOL     float64
	StopLossPct   float64
	TakeProfitPct float64
	Risk          RiskTier

	Strategy Strategy
	Reasons  []string

	CreatedAt time.Time
}

// TradeOutcome is reported back by the execution collaborator after a
// signal has been filled.
type TradeOutcome struct {
	SignalID    string
	AgentID     string
	Mint        string
	NotionalSOL float64
	PnLSOL      float64
	IsWin       bool
	ExecutedAt  time.Time
}

// Position is an open position held against a token, as tracked by the
// execution collaborator and fed back for exit evaluation.
type Position struct {
	Mint             string
	AmountSOL        float64
	EntryPrice       float64
	CurrentPrice     float64
	UnrealizedPnLPct float64
	OpenedAt         time.Time
}
