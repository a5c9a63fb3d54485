// Package wallet resolves the counterfactual smart wallet a voter's gasless
// votes are sent from, and deploys it on request.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/allegro/bigcache/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// DeploymentPolicy decides what happens when the deployment check itself fails.
type DeploymentPolicy string

const (
	// PolicyStandard sends the vote down the self-paying path.
	PolicyStandard DeploymentPolicy = "standard"
	// PolicyAssumeUndeployed treats the wallet as missing and offers to create it.
	PolicyAssumeUndeployed DeploymentPolicy = "assume-undeployed"
)

func ParseDeploymentPolicy(s string) (DeploymentPolicy, error) {
	switch DeploymentPolicy(s) {
	case "", PolicyStandard:
		return PolicyStandard, nil
	case PolicyAssumeUndeployed:
		return PolicyAssumeUndeployed, nil
	}
	return "", fmt.Errorf("unknown deployment check policy %q", s)
}

type Resolver struct {
	reader  chainio.Reader
	factory common.Address
	cache   *bigcache.BigCache
	logger  logger.Logger
}

// NewResolver creates a resolver against factory. cache is optional; the
// derived address is a pure function of (factory, owner, chain) so entries never go stale.
func NewResolver(reader chainio.Reader, factory common.Address, cache *bigcache.BigCache, lgr logger.Logger) *Resolver {
	return &Resolver{
		reader:  reader,
		factory: factory,
		cache:   cache,
		logger:  logger.Component(lgr, "wallet-resolver"),
	}
}

func (r *Resolver) Factory() common.Address {
	return r.factory
}

func (r *Resolver) Salt(owner common.Address, chainID *big.Int) *big.Int {
	return aa.SaltFor(owner, chainID)
}

func (r *Resolver) cacheKey(owner common.Address, chainID *big.Int) string {
	return fmt.Sprintf("wallet:%s:%s:%s", strings.ToLower(r.factory.Hex()), strings.ToLower(owner.Hex()), chainID.String())
}

// ResolveAddress returns the deterministic wallet address of owner on chainID.
// The wallet does not need to exist.
func (r *Resolver) ResolveAddress(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return common.Address{}, fmt.Errorf("invalid chain id %v", chainID)
	}

	key := r.cacheKey(owner, chainID)
	if r.cache != nil {
		if data, err := r.cache.Get(key); err == nil && len(data) == common.AddressLength {
			return common.BytesToAddress(data), nil
		}
	}

	sender, err := aa.GetSenderAddress(ctx, r.reader, r.factory, owner, r.Salt(owner, chainID))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to derive smart wallet address for owner %s: %w", owner.Hex(), err)
	}
	if sender == (common.Address{}) {
		return common.Address{}, fmt.Errorf("factory %s returned the zero address for owner %s", r.factory.Hex(), owner.Hex())
	}

	if r.cache != nil {
		// Ignore cache errors - caching is not critical
		_ = r.cache.Set(key, sender.Bytes())
	}
	return sender, nil
}

// HasDeployedWallet reports whether code exists at the resolved address.
// Errors are returned as is; the caller applies its DeploymentPolicy.
func (r *Resolver) HasDeployedWallet(ctx context.Context, owner common.Address, chainID *big.Int) (bool, error) {
	sender, err := r.ResolveAddress(ctx, owner, chainID)
	if err != nil {
		return false, err
	}
	return r.IsDeployed(ctx, sender)
}

func (r *Resolver) IsDeployed(ctx context.Context, sender common.Address) (bool, error) {
	code, err := r.reader.CodeAt(ctx, sender, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read code at %s: %w", sender.Hex(), err)
	}
	return len(code) > 0, nil
}

// Wallet describes owner's wallet on chainID, including whether it is deployed.
func (r *Resolver) Wallet(ctx context.Context, owner common.Address, chainID *big.Int) (*model.SmartWallet, error) {
	sender, err := r.ResolveAddress(ctx, owner, chainID)
	if err != nil {
		return nil, err
	}
	deployed, err := r.IsDeployed(ctx, sender)
	if err != nil {
		return nil, err
	}

	factory := r.factory
	return &model.SmartWallet{
		Owner:    &owner,
		Address:  &sender,
		Factory:  &factory,
		Salt:     r.Salt(owner, chainID),
		ChainID:  new(big.Int).Set(chainID),
		Deployed: deployed,
	}, nil
}
