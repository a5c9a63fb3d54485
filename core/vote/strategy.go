package vote

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/core/chainio/strategy"
	"github.com/AvaProtocol/gasless-vote/model"
)

// StrategyKind selects how a vote is encoded and how "already voted" is read.
type StrategyKind int

const (
	// FixedWeight is LinearERC20Voting: one vote per address, weight from token balance.
	FixedWeight StrategyKind = iota
	// NftWeighted is LinearERC721Voting: each (token, id) pair votes once.
	NftWeighted
)

func (k StrategyKind) String() string {
	switch k {
	case FixedWeight:
		return "erc20"
	case NftWeighted:
		return "erc721"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

func ParseStrategyKind(s string) (StrategyKind, error) {
	switch s {
	case "erc20", "fixed", "":
		return FixedWeight, nil
	case "erc721", "nft":
		return NftWeighted, nil
	}
	return 0, fmt.Errorf("unknown voting strategy kind %q", s)
}

// Strategy is a deployed voting strategy contract.
type Strategy struct {
	Kind    StrategyKind
	Address common.Address
}

func (s Strategy) ABI() *abi.ABI {
	if s.Kind == NftWeighted {
		return strategy.ERC721ABI()
	}
	return strategy.ERC20ABI()
}

// EncodeVote returns the strategy's own vote calldata for intent.
func (s Strategy) EncodeVote(intent *model.VoteIntent) ([]byte, error) {
	switch s.Kind {
	case FixedWeight:
		return strategy.PackVoteERC20(intent.ProposalID, uint8(intent.Choice))
	case NftWeighted:
		if len(intent.Tokens) == 0 {
			return nil, fmt.Errorf("NFT weighted vote needs at least one token")
		}
		addresses := lo.Map(intent.Tokens, func(t model.NFTVote, _ int) common.Address { return t.TokenAddress })
		ids := lo.Map(intent.Tokens, func(t model.NFTVote, _ int) *big.Int { return t.TokenID })
		return strategy.PackVoteERC721(intent.ProposalID, uint8(intent.Choice), addresses, ids)
	}
	return nil, fmt.Errorf("unsupported strategy kind %s", s.Kind)
}

// UnvotedTokens returns the tokens of intent that have not voted on the proposal yet.
// For FixedWeight it returns nil and reports voted for the voter address itself.
func (s Strategy) UnvotedTokens(ctx context.Context, reader chainio.Reader, intent *model.VoteIntent) (voted bool, remaining []model.NFTVote, err error) {
	switch s.Kind {
	case FixedWeight:
		voted, err = strategy.HasVotedERC20(ctx, reader, s.Address, intent.ProposalID, intent.Voter)
		return voted, nil, err
	case NftWeighted:
		for _, token := range intent.Tokens {
			tokenVoted, err := strategy.HasVotedERC721(ctx, reader, s.Address, intent.ProposalID, token.TokenAddress, token.TokenID)
			if err != nil {
				return false, nil, err
			}
			if !tokenVoted {
				remaining = append(remaining, token)
			}
		}
		return len(remaining) == 0, remaining, nil
	}
	return false, nil, fmt.Errorf("unsupported strategy kind %s", s.Kind)
}
