// Package arbiter scores token candidates and turns them into trade
// signals. Scoring is a pure function of the candidate and the external
// safety/sentiment results; missing inputs degrade to conservative
// defaults instead of erroring, so a flaky collaborator can never stall
// the evaluation pipeline.
package arbiter

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-agent-swarm/internal/domain"
)

// scoreWeights is the safety/sentiment/momentum triple for one strategy.
// Each triple sums to 1.0.
type scoreWeights struct {
	safety    float64
	sentiment float64
	momentum  float64
}

var strategyWeights = map[domain.Strategy]scoreWeights{
	domain.StrategyMomentum:  {safety: 0.3, sentiment: 0.2, momentum: 0.5},
	domain.StrategySentiment: {safety: 0.3, sentiment: 0.5, momentum: 0.2},
	domain.StrategyPumpGrad:  {safety: 0.4, sentiment: 0.3, momentum: 0.3},
	domain.StrategyWhaleCopy: {safety: 0.35, sentiment: 0.25, momentum: 0.4},
	domain.StrategySniper:    {safety: 0.25, sentiment: 0.25, momentum: 0.5},
	domain.StrategyScalper:   {safety: 0.2, sentiment: 0.2, momentum: 0.6},
}

var defaultWeights = scoreWeights{safety: 0.33, sentiment: 0.33, momentum: 0.34}

// Arbiter evaluates candidates for one strategy.
type Arbiter struct {
	cfg      Config
	strategy domain.Strategy
	log      zerolog.Logger

	mu      sync.Mutex
	history []domain.TradeSignal
}

// New returns an arbiter scoring with the weights of strategy.
func New(cfg Config, strategy domain.Strategy, log zerolog.Logger) *Arbiter {
	return &Arbiter{
		cfg:      cfg,
		strategy: strategy,
		log:      log.With().Str("component", "arbiter").Str("strategy", string(strategy)).Logger(),
	}
}

// Evaluate scores a candidate against the strategy's weights and applies
// the tradeability gates. Nil safety or sentiment results degrade to
// fail-safe scores rather than erroring.
func (a *Arbiter) Evaluate(token domain.TokenCandidate, safety *domain.SafetyResult, sentiment *domain.SentimentResult) domain.TokenAnalysis {
	analysis := domain.TokenAnalysis{
		Token:     token,
		Safety:    safety,
		Sentiment: sentiment,
	}

	analysis.SafetyScore = safetyScore(safety)
	analysis.SentimentScore = sentimentScore(sentiment)
	analysis.MomentumScore = momentumScore(token)

	w, ok := strategyWeights[a.strategy]
	if !ok {
		w = defaultWeights
	}
	mult := a.multiplier(token, &analysis)

	analysis.OverallScore = (analysis.SafetyScore*w.safety +
		analysis.SentimentScore*w.sentiment +
		analysis.MomentumScore*w.momentum) * mult

	analysis.Tradeable = a.gate(&analysis)
	return analysis
}

// Signal decides an action for an evaluated candidate. With no existing
// position it is an entry decision (BUY or skip); with one it is an exit
// decision (SELL or hold). Skip and hold produce no signal.
func (a *Arbiter) Signal(analysis domain.TokenAnalysis, position *domain.Position) *domain.TradeSignal {
	if !analysis.Tradeable {
		return nil
	}

	var action domain.TradeAction
	if position != nil {
		action = a.evaluateExit(position, &analysis)
	} else {
		action = a.evaluateEntry(&analysis)
	}
	if action == domain.ActionSkip || action == domain.ActionHold {
		return nil
	}

	confidence := analysis.OverallScore / 100
	sig := &domain.TradeSignal{
		SignalID:      uuid.NewString(),
		Mint:          analysis.Token.Mint,
		Symbol:        analysis.Token.Symbol,
		Action:        action,
		Confidence:    confidence,
		AmountSOL:     a.positionSize(&analysis, confidence),
		StopLossPct:   a.stopLoss(&analysis),
		TakeProfitPct: a.takeProfit(&analysis),
		Risk:          riskTier(&analysis),
		Strategy:      a.strategy,
		Reasons:       analysis.Reasons,
		CreatedAt:     time.Now().UTC(),
	}

	a.mu.Lock()
	a.history = append(a.history, *sig)
	if len(a.history) > a.cfg.MaxSignalHistory {
		a.history = a.history[len(a.history)-a.cfg.MaxSignalHistory:]
	}
	a.mu.Unlock()

	a.log.Info().
		Str("action", string(action)).
		Str("symbol", analysis.Token.Symbol).
		Float64("confidence", confidence).
		Float64("amount_sol", sig.AmountSOL).
		Msg("signal generated")
	return sig
}

// History returns a copy of the bounded signal history, oldest first.
func (a *Arbiter) History() []domain.TradeSignal {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.TradeSignal, len(a.history))
	copy(out, a.history)
	return out
}

// safetyScore maps the security vetting result to 0-100. No data scores
// zero: an unvetted token is treated as maximally unsafe.
func safetyScore(safety *domain.SafetyResult) float64 {
	if safety == nil {
		return 0
	}
	if safety.IsHoneypot {
		return 0
	}

	score := 100.0
	score -= safety.HoneypotScore * 30
	if safety.IsMintable {
		score -= 20
	}
	if safety.IsFreezable {
		score -= 15
	}
	switch {
	case safety.Top10HolderPct > 80:
		score -= 30
	case safety.Top10HolderPct > 60:
		score -= 15
	case safety.Top10HolderPct > 40:
		score -= 5
	}
	return clamp(score)
}

// sentimentScore maps a -10..+10 social score to 0-100 with bonuses for
// mention volume and trending status. No data scores neutral 50.
func sentimentScore(sentiment *domain.SentimentResult) float64 {
	if sentiment == nil {
		return 50
	}

	score := (sentiment.Score + 10) * 5
	switch {
	case sentiment.TotalMentions > 100:
		score += 10
	case sentiment.TotalMentions > 50:
		score += 5
	}
	if sentiment.IsTrending {
		score += 15
	}
	return clamp(score)
}

// momentumScore starts neutral at 50 and moves with short-term price
// action, volume and liquidity.
func momentumScore(token domain.TokenCandidate) float64 {
	score := 50.0

	switch {
	case token.PriceChange5m > 10:
		score += 20
	case token.PriceChange5m > 5:
		score += 10
	case token.PriceChange5m < -10:
		score -= 20
	case token.PriceChange5m < -5:
		score -= 10
	}

	switch {
	case token.PriceChange1h > 20:
		score += 15
	case token.PriceChange1h > 10:
		score += 8
	case token.PriceChange1h < -20:
		score -= 15
	case token.PriceChange1h < -10:
		score -= 8
	}

	switch {
	case token.Volume24hUSD > 100000:
		score += 10
	case token.Volume24hUSD > 50000:
		score += 5
	}

	switch {
	case token.LiquidityUSD > 50000:
		score += 5
	case token.LiquidityUSD < 10000:
		score -= 10
	}

	return clamp(score)
}

// multiplier applies the strategy-specific bonus when its conditions hold.
func (a *Arbiter) multiplier(token domain.TokenCandidate, analysis *domain.TokenAnalysis) float64 {
	switch a.strategy {
	case domain.StrategyMomentum:
		if token.PriceChange5m > 15 {
			analysis.Reasons = append(analysis.Reasons, "strong 5m momentum")
			return 1.2
		}
	case domain.StrategyPumpGrad:
		if token.MarketCapUSD > 50000 && token.LiquidityUSD > 20000 {
			analysis.Reasons = append(analysis.Reasons, "graduation candidate")
			return 1.15
		}
	case domain.StrategySentiment:
		if analysis.Sentiment != nil && analysis.Sentiment.IsTrending {
			analysis.Reasons = append(analysis.Reasons, "viral social sentiment")
			return 1.25
		}
	}
	return 1.0
}

// gate applies the tradeability checks, recording the first failing reason.
func (a *Arbiter) gate(analysis *domain.TokenAnalysis) bool {
	if analysis.Safety == nil {
		analysis.Reasons = append(analysis.Reasons, "no safety data")
		return false
	}
	if !analysis.Safety.Passed {
		analysis.Reasons = append(analysis.Reasons, "failed safety check")
		return false
	}
	if analysis.Token.LiquidityUSD < a.cfg.MinLiquidityUSD {
		analysis.Reasons = append(analysis.Reasons, "liquidity too low")
		return false
	}
	if analysis.OverallScore < a.cfg.MinOverallScore {
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("score %.0f below minimum %.0f", analysis.OverallScore, a.cfg.MinOverallScore))
		return false
	}
	return true
}

func (a *Arbiter) evaluateEntry(analysis *domain.TokenAnalysis) domain.TradeAction {
	if analysis.OverallScore < a.cfg.MinOverallScore {
		return domain.ActionSkip
	}
	if analysis.SafetyScore < 50 {
		analysis.Reasons = append(analysis.Reasons, "safety too low for entry")
		return domain.ActionSkip
	}
	analysis.Reasons = append(analysis.Reasons, fmt.Sprintf("score %.0f/100", analysis.OverallScore))
	return domain.ActionBuy
}

func (a *Arbiter) evaluateExit(position *domain.Position, analysis *domain.TokenAnalysis) domain.TradeAction {
	if position.UnrealizedPnLPct <= -a.cfg.StopLossPct {
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("stop loss triggered at %.1f%%", position.UnrealizedPnLPct))
		return domain.ActionSell
	}
	if position.UnrealizedPnLPct >= a.cfg.TakeProfitPct {
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("take profit triggered at %.1f%%", position.UnrealizedPnLPct))
		return domain.ActionSell
	}
	if analysis.SentimentScore < 30 {
		analysis.Reasons = append(analysis.Reasons, "sentiment deteriorating")
		return domain.ActionSell
	}
	if analysis.MomentumScore < 30 && position.UnrealizedPnLPct > 0 {
		analysis.Reasons = append(analysis.Reasons, "taking profit on momentum reversal")
		return domain.ActionSell
	}
	return domain.ActionHold
}

// positionSize scales between the configured bounds by confidence,
// reduced for low-safety tokens.
func (a *Arbiter) positionSize(analysis *domain.TokenAnalysis, confidence float64) float64 {
	size := a.cfg.MinTradeSOL + (a.cfg.MaxTradeSOL-a.cfg.MinTradeSOL)*confidence
	if analysis.SafetyScore < 70 {
		size *= 0.7
	}
	size = math.Min(size, a.cfg.MaxTradeSOL)
	return math.Round(size*10000) / 10000
}

func (a *Arbiter) stopLoss(analysis *domain.TokenAnalysis) float64 {
	if analysis.SafetyScore < 60 {
		return a.cfg.StopLossPct * 0.8
	}
	return a.cfg.StopLossPct
}

func (a *Arbiter) takeProfit(analysis *domain.TokenAnalysis) float64 {
	if analysis.MomentumScore > 80 {
		return a.cfg.TakeProfitPct * 1.5
	}
	return a.cfg.TakeProfitPct
}

func riskTier(analysis *domain.TokenAnalysis) domain.RiskTier {
	switch {
	case analysis.SafetyScore > 80 && analysis.OverallScore > 75:
		return domain.RiskMedium
	case analysis.SafetyScore > 60:
		return domain.RiskHigh
	default:
		return domain.RiskExtreme
	}
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}
