// Package strategy binds the Azorius governance module and its two voting
// strategies: LinearERC20Voting (token weighted) and LinearERC721Voting (NFT weighted).
package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var LinearERC20VotingMetaData = &bind.MetaData{
	ABI: `[
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"},{"internalType":"uint8","name":"_voteType","type":"uint8"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"},{"internalType":"address","name":"_address","type":"address"}],"name":"hasVoted","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"}],"name":"getProposalVotes","outputs":[{"internalType":"uint256","name":"noVotes","type":"uint256"},{"internalType":"uint256","name":"yesVotes","type":"uint256"},{"internalType":"uint256","name":"abstainVotes","type":"uint256"},{"internalType":"uint32","name":"startBlock","type":"uint32"},{"internalType":"uint32","name":"endBlock","type":"uint32"},{"internalType":"uint256","name":"votingSupply","type":"uint256"}],"stateMutability":"view","type":"function"}
]`,
}

var LinearERC721VotingMetaData = &bind.MetaData{
	ABI: `[
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"},{"internalType":"uint8","name":"_voteType","type":"uint8"},{"internalType":"address[]","name":"_tokenAddresses","type":"address[]"},{"internalType":"uint256[]","name":"_tokenIds","type":"uint256[]"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"},{"internalType":"address","name":"_tokenAddress","type":"address"},{"internalType":"uint256","name":"_tokenId","type":"uint256"}],"name":"hasVoted","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"}],"name":"getProposalVotes","outputs":[{"internalType":"uint256","name":"noVotes","type":"uint256"},{"internalType":"uint256","name":"yesVotes","type":"uint256"},{"internalType":"uint256","name":"abstainVotes","type":"uint256"},{"internalType":"uint32","name":"startBlock","type":"uint32"},{"internalType":"uint32","name":"endBlock","type":"uint32"}],"stateMutability":"view","type":"function"}
]`,
}

var AzoriusMetaData = &bind.MetaData{
	ABI: `[{"inputs":[{"internalType":"uint32","name":"_proposalId","type":"uint32"}],"name":"proposalState","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}]`,
}

// ProposalVotes is the tally window of a proposal. Only the fields shared by both strategies are kept.
type ProposalVotes struct {
	NoVotes      *big.Int
	YesVotes     *big.Int
	AbstainVotes *big.Int
	StartBlock   uint32
	EndBlock     uint32
}

func mustABI(md *bind.MetaData) *abi.ABI {
	parsed, err := md.GetAbi()
	if err != nil {
		panic(fmt.Errorf("invalid embedded ABI: %w", err))
	}
	return parsed
}

var (
	erc20ABI   = mustABI(LinearERC20VotingMetaData)
	erc721ABI  = mustABI(LinearERC721VotingMetaData)
	azoriusABI = mustABI(AzoriusMetaData)
)

// PackVoteERC20 encodes LinearERC20Voting.vote(proposalId, voteType).
func PackVoteERC20(proposalID uint32, voteType uint8) ([]byte, error) {
	return erc20ABI.Pack("vote", proposalID, voteType)
}

// PackVoteERC721 encodes LinearERC721Voting.vote(proposalId, voteType, tokenAddresses, tokenIds).
func PackVoteERC721(proposalID uint32, voteType uint8, tokenAddresses []common.Address, tokenIDs []*big.Int) ([]byte, error) {
	if len(tokenAddresses) != len(tokenIDs) {
		return nil, fmt.Errorf("token addresses and ids differ in length: %d != %d", len(tokenAddresses), len(tokenIDs))
	}
	return erc721ABI.Pack("vote", proposalID, voteType, tokenAddresses, tokenIDs)
}

// HasVotedERC20 reports whether voter has already voted on proposalID.
func HasVotedERC20(ctx context.Context, caller bind.ContractCaller, strategy common.Address, proposalID uint32, voter common.Address) (bool, error) {
	var out []interface{}
	contract := bind.NewBoundContract(strategy, *erc20ABI, caller, nil, nil)
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasVoted", proposalID, voter); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// HasVotedERC721 reports whether the given NFT has already been used to vote on proposalID.
func HasVotedERC721(ctx context.Context, caller bind.ContractCaller, strategy common.Address, proposalID uint32, tokenAddress common.Address, tokenID *big.Int) (bool, error) {
	var out []interface{}
	contract := bind.NewBoundContract(strategy, *erc721ABI, caller, nil, nil)
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasVoted", proposalID, tokenAddress, tokenID); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetProposalVotes reads the voting window from either strategy. erc721 selects the ABI.
func GetProposalVotes(ctx context.Context, caller bind.ContractCaller, strategy common.Address, proposalID uint32, erc721 bool) (*ProposalVotes, error) {
	parsed := erc20ABI
	if erc721 {
		parsed = erc721ABI
	}

	var out []interface{}
	contract := bind.NewBoundContract(strategy, *parsed, caller, nil, nil)
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getProposalVotes", proposalID); err != nil {
		return nil, err
	}
	if len(out) < 5 {
		return nil, fmt.Errorf("getProposalVotes returned %d values", len(out))
	}

	return &ProposalVotes{
		NoVotes:      *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		YesVotes:     *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		AbstainVotes: *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		StartBlock:   *abi.ConvertType(out[3], new(uint32)).(*uint32),
		EndBlock:     *abi.ConvertType(out[4], new(uint32)).(*uint32),
	}, nil
}

// ProposalState reads Azorius.proposalState(proposalId).
func ProposalState(ctx context.Context, caller bind.ContractCaller, azorius common.Address, proposalID uint32) (uint8, error) {
	var out []interface{}
	contract := bind.NewBoundContract(azorius, *azoriusABI, caller, nil, nil)
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "proposalState", proposalID); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// ERC20ABI, ERC721ABI and AzoriusABI expose the parsed ABIs for callers that
// need to decode calldata, such as test fakes.
func ERC20ABI() *abi.ABI   { return erc20ABI }
func ERC721ABI() *abi.ABI  { return erc721ABI }
func AzoriusABI() *abi.ABI { return azoriusABI }
