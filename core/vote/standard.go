package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// StandardVoter casts a vote paid by the voter, as a direct strategy call.
type StandardVoter interface {
	CastVote(ctx context.Context, intent *model.VoteIntent) (common.Hash, error)
}

// ChainVoter sends the vote transaction from the voter's key.
type ChainVoter struct {
	backend  chainio.Backend
	strategy Strategy
	opts     *bind.TransactOpts
	logger   logger.Logger
}

func NewChainVoter(backend chainio.Backend, s Strategy, opts *bind.TransactOpts, lgr logger.Logger) *ChainVoter {
	return &ChainVoter{
		backend:  backend,
		strategy: s,
		opts:     opts,
		logger:   logger.Component(lgr, "standard-voter"),
	}
}

func (v *ChainVoter) CastVote(ctx context.Context, intent *model.VoteIntent) (common.Hash, error) {
	if intent.Voter != v.opts.From {
		return common.Hash{}, fmt.Errorf("voter %s does not match signing key %s", intent.Voter.Hex(), v.opts.From.Hex())
	}

	data, err := v.strategy.EncodeVote(intent)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode vote: %w", err)
	}

	contract := bind.NewBoundContract(v.strategy.Address, *v.strategy.ABI(), v.backend, v.backend, v.backend)
	opts := *v.opts
	opts.Context = ctx

	tx, err := contract.RawTransact(&opts, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("vote transaction failed: %w", err)
	}

	v.logger.Info("vote transaction sent", "voter", intent.Voter.Hex(), "proposal", intent.ProposalID, "tx", tx.Hash().Hex())
	return tx.Hash(), nil
}

// WaitVote polls for the receipt of a standard vote transaction.
func (v *ChainVoter) WaitVote(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		receipt, err := v.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("vote transaction %s reverted", hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			v.logger.Debug("receipt lookup failed", "tx", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
