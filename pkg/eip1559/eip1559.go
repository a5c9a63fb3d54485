package eip1559

import (
	"context"
	"fmt"
	"math/big"
)

const (
	// maxFeePerGas = gasPrice * 120 / 100
	DefaultMaxFeeBufferPercent = 120
	// maxPriorityFeePerGas = gasPrice * 15 / 100
	DefaultPriorityFeePercent = 15
)

type GasPricer interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Fees is the fee quote attached to a user operation. It is a heuristic on the
// current gas price, not a simulation.
type Fees struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

type FeePolicy struct {
	MaxFeeBufferPercent int64
	PriorityFeePercent  int64
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		MaxFeeBufferPercent: DefaultMaxFeeBufferPercent,
		PriorityFeePercent:  DefaultPriorityFeePercent,
	}
}

// FeesFromGasPrice applies the policy to a gas price reading.
func (p FeePolicy) FeesFromGasPrice(gasPrice *big.Int) Fees {
	maxFee := new(big.Int).Mul(gasPrice, big.NewInt(p.MaxFeeBufferPercent))
	maxFee.Div(maxFee, big.NewInt(100))

	tip := new(big.Int).Mul(gasPrice, big.NewInt(p.PriorityFeePercent))
	tip.Div(tip, big.NewInt(100))

	return Fees{MaxFeePerGas: maxFee, MaxPriorityFeePerGas: tip}
}

// SuggestFee reads the node gas price and derives a fee quote from it.
func (p FeePolicy) SuggestFee(ctx context.Context, client GasPricer) (Fees, *big.Int, error) {
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return Fees{}, nil, fmt.Errorf("failed to read gas price: %w", err)
	}
	return p.FeesFromGasPrice(gasPrice), gasPrice, nil
}

// SuggestFee uses the default policy.
func SuggestFee(ctx context.Context, client GasPricer) (Fees, *big.Int, error) {
	return DefaultFeePolicy().SuggestFee(ctx, client)
}
