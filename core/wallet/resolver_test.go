package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/core/testutil"
)

// fakeFactory answers getAddress with a hash of (owner, salt) like CREATE2 would.
func fakeFactory(t *testing.T, chain *testutil.FakeChain) {
	t.Helper()
	parsed, err := aa.SimpleFactoryMetaData.GetAbi()
	require.NoError(t, err)

	chain.Handle(testutil.TestFactory, parsed, "getAddress", func(args []interface{}) ([]interface{}, error) {
		owner := args[0].(common.Address)
		salt := args[1].(*big.Int)
		h := crypto.Keccak256(owner.Bytes(), common.BigToHash(salt).Bytes())
		return []interface{}{common.BytesToAddress(h[12:])}, nil
	})
}

func TestResolveAddress_Idempotent(t *testing.T) {
	chain := testutil.NewFakeChain()
	fakeFactory(t, chain)
	resolver := NewResolver(chain, testutil.TestFactory, nil, nil)

	ctx := context.Background()
	chainID := big.NewInt(11155111)

	first, err := resolver.ResolveAddress(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)
	second, err := resolver.ResolveAddress(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, common.Address{}, first)

	// the factory saw the chain scoped salt
	calls := chain.CallLog()
	require.NotEmpty(t, calls)
	assert.Equal(t, aa.SaltFor(testutil.TestVoter, chainID), calls[0].Args[1])
}

func TestResolveAddress_ChainScoped(t *testing.T) {
	chain := testutil.NewFakeChain()
	fakeFactory(t, chain)
	resolver := NewResolver(chain, testutil.TestFactory, nil, nil)

	mainnet, err := resolver.ResolveAddress(context.Background(), testutil.TestVoter, big.NewInt(1))
	require.NoError(t, err)
	sepolia, err := resolver.ResolveAddress(context.Background(), testutil.TestVoter, big.NewInt(11155111))
	require.NoError(t, err)

	assert.NotEqual(t, mainnet, sepolia)
}

func TestResolveAddress_UsesCache(t *testing.T) {
	chain := testutil.NewFakeChain()
	fakeFactory(t, chain)
	resolver := NewResolver(chain, testutil.TestFactory, testutil.GetDefaultCache(), nil)

	for i := 0; i < 3; i++ {
		_, err := resolver.ResolveAddress(context.Background(), testutil.TestVoter, big.NewInt(1))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, chain.Calls("getAddress"))
}

func TestResolveAddress_InvalidChain(t *testing.T) {
	resolver := NewResolver(testutil.NewFakeChain(), testutil.TestFactory, nil, nil)
	_, err := resolver.ResolveAddress(context.Background(), testutil.TestVoter, big.NewInt(0))
	assert.Error(t, err)
}

func TestHasDeployedWallet(t *testing.T) {
	chain := testutil.NewFakeChain()
	fakeFactory(t, chain)
	resolver := NewResolver(chain, testutil.TestFactory, nil, nil)
	ctx := context.Background()
	chainID := big.NewInt(1)

	deployed, err := resolver.HasDeployedWallet(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)
	assert.False(t, deployed)

	sender, err := resolver.ResolveAddress(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)
	chain.SetCode(sender, []byte{0x60, 0x80, 0x60, 0x40})

	deployed, err = resolver.HasDeployedWallet(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)
	assert.True(t, deployed)

	w, err := resolver.Wallet(ctx, testutil.TestVoter, chainID)
	require.NoError(t, err)
	assert.True(t, w.Deployed)
	assert.Equal(t, sender, *w.Address)
}

func TestHasDeployedWallet_PropagatesReadError(t *testing.T) {
	chain := testutil.NewFakeChain()
	fakeFactory(t, chain)
	chain.CodeErr = errors.New("connection reset")
	resolver := NewResolver(chain, testutil.TestFactory, nil, nil)

	_, err := resolver.HasDeployedWallet(context.Background(), testutil.TestVoter, big.NewInt(1))
	assert.ErrorContains(t, err, "connection reset")
}

func TestParseDeploymentPolicy(t *testing.T) {
	p, err := ParseDeploymentPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStandard, p)

	p, err = ParseDeploymentPolicy("assume-undeployed")
	require.NoError(t, err)
	assert.Equal(t, PolicyAssumeUndeployed, p)

	_, err = ParseDeploymentPolicy("yolo")
	assert.Error(t, err)
}
