package sponsor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/chainio"
	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

// Verdict is the outcome of comparing the paymaster deposit with what a vote may cost.
type Verdict struct {
	OK     bool
	Reason string

	Deposit        *big.Int
	EstimatedCost  *big.Int
	GasPrice       *big.Int
	MinBalance     *big.Int
	MeetsThreshold bool
	CoversCost     bool
}

// Check applies both gates: the deposit covers estimatedCost and is at least minBalance.
func Check(deposit, estimatedCost, minBalance *big.Int) Verdict {
	v := Verdict{
		Deposit:       deposit,
		EstimatedCost: estimatedCost,
		MinBalance:    minBalance,
	}
	if deposit == nil || estimatedCost == nil {
		v.Reason = "paymaster deposit or cost unknown"
		return v
	}

	v.CoversCost = deposit.Cmp(estimatedCost) >= 0
	v.MeetsThreshold = minBalance == nil || deposit.Cmp(minBalance) >= 0
	v.OK = v.CoversCost && v.MeetsThreshold

	switch {
	case !v.MeetsThreshold:
		v.Reason = fmt.Sprintf("paymaster deposit %s ETH is below the %s ETH minimum", FormatEther(deposit), FormatEther(minBalance))
	case !v.CoversCost:
		v.Reason = fmt.Sprintf("paymaster deposit %s ETH does not cover estimated cost %s ETH", FormatEther(deposit), FormatEther(estimatedCost))
	}
	return v
}

// Evaluate estimates the cost at gasPrice and checks it against deposit.
func Evaluate(deposit, gasPrice, minBalance *big.Int, limits GasLimits, bufferPercent int64) Verdict {
	v := Check(deposit, EstimateCost(gasPrice, limits, bufferPercent), minBalance)
	v.GasPrice = gasPrice
	return v
}

type GuardConfig struct {
	Entrypoint        common.Address
	Paymaster         common.Address
	Limits            GasLimits
	CostBufferPercent int64
	MinBalance        *big.Int
}

// Guard reads the gas price and the paymaster's EntryPoint deposit live on
// every call. Nothing is cached between votes.
type Guard struct {
	reader chainio.Reader
	config GuardConfig
	logger logger.Logger
}

func NewGuard(reader chainio.Reader, config GuardConfig, lgr logger.Logger) *Guard {
	if config.CostBufferPercent <= 0 {
		config.CostBufferPercent = DefaultCostBufferPercent
	}
	if config.Limits.Total().Sign() == 0 {
		config.Limits = DefaultGasLimits()
	}
	if config.MinBalance == nil {
		config.MinBalance = DefaultMinPaymasterBalance
	}
	return &Guard{
		reader: reader,
		config: config,
		logger: logger.Component(lgr, "cost-guard"),
	}
}

func (g *Guard) Paymaster() common.Address {
	return g.config.Paymaster
}

// Deposit is EntryPoint.balanceOf(paymaster).
func (g *Guard) Deposit(ctx context.Context) (*big.Int, error) {
	ep, err := aa.NewEntryPointCaller(g.config.Entrypoint, g.reader)
	if err != nil {
		return nil, err
	}
	deposit, err := ep.BalanceOf(&bind.CallOpts{Context: ctx}, g.config.Paymaster)
	if err != nil {
		return nil, fmt.Errorf("failed to read paymaster deposit: %w", err)
	}
	return deposit, nil
}

// MeetsThreshold is the coarse check used to decide whether to offer a gasless
// vote at all.
func (g *Guard) MeetsThreshold(ctx context.Context) (bool, *big.Int, error) {
	deposit, err := g.Deposit(ctx)
	if err != nil {
		return false, nil, err
	}
	return deposit.Cmp(g.config.MinBalance) >= 0, deposit, nil
}

// CanSponsor fails closed: any read error comes back as a non-OK verdict
// together with the error.
func (g *Guard) CanSponsor(ctx context.Context) (Verdict, error) {
	gasPrice, err := g.reader.SuggestGasPrice(ctx)
	if err != nil {
		g.logger.Warn("gas price read failed, not sponsoring", "error", err)
		return Verdict{Reason: "gas price unavailable"}, fmt.Errorf("failed to read gas price: %w", err)
	}

	deposit, err := g.Deposit(ctx)
	if err != nil {
		g.logger.Warn("paymaster deposit read failed, not sponsoring", "paymaster", g.config.Paymaster.Hex(), "error", err)
		return Verdict{Reason: "paymaster deposit unavailable", GasPrice: gasPrice}, err
	}

	v := Evaluate(deposit, gasPrice, g.config.MinBalance, g.config.Limits, g.config.CostBufferPercent)

	g.logger.Debug("sponsorship check",
		"paymaster", g.config.Paymaster.Hex(),
		"deposit", deposit.String(),
		"estimatedCost", v.EstimatedCost.String(),
		"gasPrice", gasPrice.String(),
		"ok", v.OK,
	)
	return v, nil
}
