package eip1559

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPricer struct {
	price *big.Int
	err   error
}

func (s staticPricer) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return s.price, s.err
}

func TestSuggestFee_DefaultHeuristic(t *testing.T) {
	fees, gasPrice, err := SuggestFee(context.Background(), staticPricer{price: big.NewInt(10_000_000_000)})
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(10_000_000_000), gasPrice)
	assert.Equal(t, big.NewInt(12_000_000_000), fees.MaxFeePerGas)
	assert.Equal(t, big.NewInt(1_500_000_000), fees.MaxPriorityFeePerGas)
}

func TestSuggestFee_PropagatesError(t *testing.T) {
	_, _, err := SuggestFee(context.Background(), staticPricer{err: errors.New("rpc down")})
	assert.ErrorContains(t, err, "rpc down")
}

func TestFeesFromGasPrice_CustomPolicy(t *testing.T) {
	fees := FeePolicy{MaxFeeBufferPercent: 200, PriorityFeePercent: 50}.FeesFromGasPrice(big.NewInt(100))
	assert.Equal(t, big.NewInt(200), fees.MaxFeePerGas)
	assert.Equal(t, big.NewInt(50), fees.MaxPriorityFeePerGas)
}
