package vote

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/core/chainio/strategy"
	"github.com/AvaProtocol/gasless-vote/model"
)

// ProposalReader is the chain state the eligibility guard needs.
type ProposalReader interface {
	Proposal(ctx context.Context, proposalID uint32) (*model.Proposal, error)
	// HasVoted reports whether intent has nothing left to vote with. For NFT
	// strategies remaining lists the tokens that can still vote.
	HasVoted(ctx context.Context, intent *model.VoteIntent) (voted bool, remaining []model.NFTVote, err error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ChainProposalReader reads proposals from Azorius and the strategy contract.
type ChainProposalReader struct {
	reader   chainio.Reader
	azorius  common.Address
	strategy Strategy
}

func NewChainProposalReader(reader chainio.Reader, azorius common.Address, s Strategy) *ChainProposalReader {
	return &ChainProposalReader{reader: reader, azorius: azorius, strategy: s}
}

func (r *ChainProposalReader) Proposal(ctx context.Context, proposalID uint32) (*model.Proposal, error) {
	state, err := strategy.ProposalState(ctx, r.reader, r.azorius, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to read state of proposal %d: %w", proposalID, err)
	}

	votes, err := strategy.GetProposalVotes(ctx, r.reader, r.strategy.Address, proposalID, r.strategy.Kind == NftWeighted)
	if err != nil {
		return nil, fmt.Errorf("failed to read votes of proposal %d: %w", proposalID, err)
	}

	return &model.Proposal{
		ID:         proposalID,
		State:      model.ProposalState(state),
		StartBlock: uint64(votes.StartBlock),
		EndBlock:   uint64(votes.EndBlock),
	}, nil
}

func (r *ChainProposalReader) HasVoted(ctx context.Context, intent *model.VoteIntent) (bool, []model.NFTVote, error) {
	return r.strategy.UnvotedTokens(ctx, r.reader, intent)
}

func (r *ChainProposalReader) BlockNumber(ctx context.Context) (uint64, error) {
	return r.reader.BlockNumber(ctx)
}
