package feeds

import (
	"context"
	"sync"

	"solana-agent-swarm/internal/domain"
)

// StaticSource serves a fixed candidate set. Used for paper runs and tests.
type StaticSource struct {
	mu         sync.Mutex
	candidates []*domain.TokenCandidate
}

// NewStaticSource creates a source over the given candidates.
func NewStaticSource(candidates []*domain.TokenCandidate) *StaticSource {
	return &StaticSource{candidates: candidates}
}

// Compile-time interface check.
var _ CandidateSource = (*StaticSource)(nil)

// Candidates returns copies of the configured set.
func (s *StaticSource) Candidates(_ context.Context) ([]*domain.TokenCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.TokenCandidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

// SetCandidates replaces the served set.
func (s *StaticSource) SetCandidates(candidates []*domain.TokenCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = candidates
}

// StaticSafety serves fixed safety verdicts keyed by mint. Mints without
// an entry return nil, which scoring treats as no data.
type StaticSafety struct {
	mu      sync.Mutex
	results map[string]*domain.SafetyResult
}

// NewStaticSafety creates a checker over the given verdicts.
func NewStaticSafety(results map[string]*domain.SafetyResult) *StaticSafety {
	if results == nil {
		results = make(map[string]*domain.SafetyResult)
	}
	return &StaticSafety{results: results}
}

var _ SafetyChecker = (*StaticSafety)(nil)

// Check returns a copy of the configured verdict for the mint, or nil.
func (s *StaticSafety) Check(_ context.Context, mint string) (*domain.SafetyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[mint]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

// StaticSentiment serves fixed sentiment readings keyed by mint.
type StaticSentiment struct {
	mu      sync.Mutex
	results map[string]*domain.SentimentResult
}

// NewStaticSentiment creates a provider over the given readings.
func NewStaticSentiment(results map[string]*domain.SentimentResult) *StaticSentiment {
	if results == nil {
		results = make(map[string]*domain.SentimentResult)
	}
	return &StaticSentiment{results: results}
}

var _ SentimentProvider = (*StaticSentiment)(nil)

// Sentiment returns a copy of the configured reading for the mint, or nil.
func (s *StaticSentiment) Sentiment(_ context.Context, mint string) (*domain.SentimentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[mint]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}
