package treasury

import "solana-agent-swarm/internal/domain"

// RejectReason explains why an allocation request was declined.
// Rejections are ordinary outcomes of capacity management, not errors.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectBelowMinimum      RejectReason = "below_minimum"
	RejectInsufficientFunds RejectReason = "insufficient_funds"
	RejectPopulationCap     RejectReason = "population_cap"
)

// AllocationResult reports the outcome of an Allocate call. On success
// Agent holds a copy of the (possibly merged) record and Granted the
// amount actually moved, which may be below the request when the
// single-allocation cap clamps it.
type AllocationResult struct {
	Agent   *domain.AgentRecord
	Granted float64
	Clamped bool
	Reject  RejectReason
}

// Rejected reports whether the request was declined outright.
func (r AllocationResult) Rejected() bool {
	return r.Reject != RejectNone
}
