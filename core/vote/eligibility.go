package vote

import (
	"context"
	"errors"

	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// ErrNotEligible wraps a failed eligibility check when a caller wants an error.
var ErrNotEligible = errors.New("vote not eligible")

// Reasons a vote cannot be submitted. They disable the submit action; they are not failures.
const (
	ReasonPending      = "a vote for this proposal is already being submitted"
	ReasonNotActive    = "proposal is not open for voting"
	ReasonTooEarly     = "voting opens in the block after the proposal starts"
	ReasonAlreadyVoted = "already voted on this proposal"
)

// Eligibility is the result of a CanVote check.
type Eligibility struct {
	Eligible bool
	Reason   string
	Proposal *model.Proposal
	// Tokens that can still vote, NFT strategies only.
	Tokens []model.NFTVote
}

// EligibilityGuard gates entry into the pipeline.
type EligibilityGuard struct {
	proposals ProposalReader
	pending   *PendingSet
	logger    logger.Logger
}

func NewEligibilityGuard(proposals ProposalReader, pending *PendingSet, lgr logger.Logger) *EligibilityGuard {
	if pending == nil {
		pending = NewPendingSet()
	}
	return &EligibilityGuard{
		proposals: proposals,
		pending:   pending,
		logger:    logger.Component(lgr, "eligibility"),
	}
}

func (g *EligibilityGuard) Pending() *PendingSet {
	return g.pending
}

// Check evaluates every condition without claiming the pending slot. The
// returned error is a chain read failure; ineligibility is reported in the result.
func (g *EligibilityGuard) Check(ctx context.Context, intent *model.VoteIntent) (Eligibility, error) {
	if g.pending.Has(intent.Key()) {
		return Eligibility{Reason: ReasonPending}, nil
	}
	return g.checkChain(ctx, intent)
}

// CanVote is Check reduced to a bool; read errors count as not eligible.
func (g *EligibilityGuard) CanVote(ctx context.Context, intent *model.VoteIntent) bool {
	e, err := g.Check(ctx, intent)
	return err == nil && e.Eligible
}

// Admit claims the pending slot for intent and then runs the chain checks.
// When the vote is admitted the caller must call release once the attempt is
// terminal; otherwise the slot is already released and release is a no-op.
func (g *EligibilityGuard) Admit(ctx context.Context, intent *model.VoteIntent) (Eligibility, func(), error) {
	noop := func() {}

	key := intent.Key()
	if !g.pending.TryAcquire(key) {
		g.logger.Info("rejecting vote, attempt already in flight", "key", key)
		return Eligibility{Reason: ReasonPending}, noop, nil
	}

	e, err := g.checkChain(ctx, intent)
	if err != nil || !e.Eligible {
		g.pending.Release(key)
		return e, noop, err
	}
	return e, func() { g.pending.Release(key) }, nil
}

func (g *EligibilityGuard) checkChain(ctx context.Context, intent *model.VoteIntent) (Eligibility, error) {
	proposal, err := g.proposals.Proposal(ctx, intent.ProposalID)
	if err != nil {
		return Eligibility{}, err
	}
	e := Eligibility{Proposal: proposal}

	if proposal.State != model.ProposalActive {
		e.Reason = ReasonNotActive
		return e, nil
	}

	block, err := g.proposals.BlockNumber(ctx)
	if err != nil {
		return Eligibility{}, err
	}
	// delegation snapshots are taken at startBlock
	if block <= proposal.StartBlock {
		e.Reason = ReasonTooEarly
		return e, nil
	}

	voted, remaining, err := g.proposals.HasVoted(ctx, intent)
	if err != nil {
		return Eligibility{}, err
	}
	if voted {
		e.Reason = ReasonAlreadyVoted
		return e, nil
	}

	e.Eligible = true
	e.Tokens = remaining
	return e, nil
}
