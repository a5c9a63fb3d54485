package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

var ErrWalletCreationDeclined = errors.New("smart wallet creation declined")

// Creator deploys the smart wallet of owner and returns its address.
type Creator interface {
	CreateWallet(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error)
}

// FactoryCreator calls factory.createAccount from the voter's own key and
// waits for the transaction to be mined.
type FactoryCreator struct {
	backend  chainio.Backend
	resolver *Resolver
	opts     *bind.TransactOpts
	logger   logger.Logger
}

func NewFactoryCreator(backend chainio.Backend, resolver *Resolver, opts *bind.TransactOpts, lgr logger.Logger) *FactoryCreator {
	return &FactoryCreator{
		backend:  backend,
		resolver: resolver,
		opts:     opts,
		logger:   logger.Component(lgr, "wallet-creator"),
	}
}

func (c *FactoryCreator) CreateWallet(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error) {
	sender, err := c.resolver.ResolveAddress(ctx, owner, chainID)
	if err != nil {
		return common.Address{}, err
	}

	factory, err := aa.NewSimpleFactory(c.resolver.Factory(), c.backend)
	if err != nil {
		return common.Address{}, err
	}

	opts := *c.opts
	opts.Context = ctx
	tx, err := factory.CreateAccount(&opts, owner, c.resolver.Salt(owner, chainID))
	if err != nil {
		return common.Address{}, fmt.Errorf("createAccount failed: %w", err)
	}
	c.logger.Info("smart wallet creation sent", "owner", owner.Hex(), "wallet", sender.Hex(), "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("waiting for createAccount %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("createAccount %s reverted", tx.Hash().Hex())
	}

	deployed, err := c.resolver.IsDeployed(ctx, sender)
	if err != nil {
		return common.Address{}, err
	}
	if !deployed {
		return common.Address{}, fmt.Errorf("no code at %s after createAccount %s", sender.Hex(), tx.Hash().Hex())
	}

	c.logger.Info("smart wallet deployed", "owner", owner.Hex(), "wallet", sender.Hex(), "block", receipt.BlockNumber)
	return sender, nil
}
