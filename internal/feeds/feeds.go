// Package feeds defines the external collaborator boundaries of the swarm:
// token discovery, safety vetting, social sentiment, and trade execution.
// The orchestrator consumes these interfaces; implementations range from
// static fixtures for paper runs to live WebSocket feeds.
package feeds

import (
	"context"

	"solana-agent-swarm/internal/domain"
)

// CandidateSource surfaces token candidates for one evaluation cycle.
type CandidateSource interface {
	// Candidates returns the current batch. An empty slice is a valid
	// result and means the cycle has nothing to evaluate.
	Candidates(ctx context.Context) ([]*domain.TokenCandidate, error)
}

// SafetyChecker vets a token mint for honeypot and authority risks.
// A nil result with nil error means no data is available; scoring
// treats that as maximally unsafe.
type SafetyChecker interface {
	Check(ctx context.Context, mint string) (*domain.SafetyResult, error)
}

// SentimentProvider reports social sentiment for a token mint.
// A nil result with nil error means no data; scoring falls back to a
// neutral baseline.
type SentimentProvider interface {
	Sentiment(ctx context.Context, mint string) (*domain.SentimentResult, error)
}

// Executor fills trade signals and reports realized outcomes.
type Executor interface {
	Execute(ctx context.Context, sig *domain.TradeSignal) (*domain.TradeOutcome, error)

	// OpenPosition returns the position currently held against a mint,
	// or nil when flat.
	OpenPosition(ctx context.Context, mint string) (*domain.Position, error)
}
