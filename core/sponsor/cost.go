// Package sponsor decides whether the paymaster can fund a vote.
package sponsor

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	DefaultVerificationGasLimit = 150000
	DefaultCallGasLimit         = 150000
	DefaultPreVerificationGas   = 90000

	DefaultCostBufferPercent = 120
)

// DefaultMinPaymasterBalance is 0.1 ether.
var DefaultMinPaymasterBalance = big.NewInt(100_000_000_000_000_000)

// GasLimits are the static gas figures a vote user operation is built with.
type GasLimits struct {
	VerificationGasLimit *big.Int
	CallGasLimit         *big.Int
	PreVerificationGas   *big.Int
}

func DefaultGasLimits() GasLimits {
	return GasLimits{
		VerificationGasLimit: big.NewInt(DefaultVerificationGasLimit),
		CallGasLimit:         big.NewInt(DefaultCallGasLimit),
		PreVerificationGas:   big.NewInt(DefaultPreVerificationGas),
	}
}

// Total is verificationGasLimit + callGasLimit + preVerificationGas.
func (g GasLimits) Total() *big.Int {
	total := new(big.Int)
	for _, v := range []*big.Int{g.VerificationGasLimit, g.CallGasLimit, g.PreVerificationGas} {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// EstimateCost is gasPrice * totalGas * bufferPercent / 100, rounded down.
func EstimateCost(gasPrice *big.Int, limits GasLimits, bufferPercent int64) *big.Int {
	if gasPrice == nil || gasPrice.Sign() < 0 {
		gasPrice = new(big.Int)
	}
	cost := new(big.Int).Mul(gasPrice, limits.Total())
	cost.Mul(cost, big.NewInt(bufferPercent))
	return cost.Div(cost, big.NewInt(100))
}

var weiPerEther = decimal.New(1, 18)

// ParseEther converts a decimal ether amount such as "0.1" into wei.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("ether amount %q is negative", s)
	}
	wei := d.Mul(weiPerEther)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", s)
	}
	return wei.BigInt(), nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
