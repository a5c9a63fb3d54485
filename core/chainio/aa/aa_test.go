package aa

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner   = common.HexToAddress("0x804e49e8C4eDb560AE7c48B554f6d2e27Bb81557")
	testFactory = common.HexToAddress("0xB99BC2E399e06CddCF5E725c0ea341E8f0322834")
)

func TestSaltFor_Deterministic(t *testing.T) {
	salt1 := SaltFor(testOwner, big.NewInt(11155111))
	salt2 := SaltFor(testOwner, big.NewInt(11155111))
	assert.Equal(t, salt1, salt2, "salt should be a pure function of owner and chain")

	expected := new(big.Int).SetBytes(crypto.Keccak256([]byte("0x804e49e8c4edb560ae7c48b554f6d2e27bb81557_11155111")))
	assert.Equal(t, expected, salt1)
}

func TestSaltFor_ScopedByChain(t *testing.T) {
	mainnet := SaltFor(testOwner, big.NewInt(1))
	sepolia := SaltFor(testOwner, big.NewInt(11155111))
	assert.NotEqual(t, mainnet, sepolia, "different chains should produce different salts")

	other := SaltFor(common.HexToAddress("0x578B110b0a7c06e66b7B1a33C39635304aaF733c"), big.NewInt(1))
	assert.NotEqual(t, mainnet, other, "different owners should produce different salts")
}

func TestGetInitCode(t *testing.T) {
	salt := big.NewInt(42)
	initCode, err := GetInitCode(testFactory, testOwner, salt)
	require.NoError(t, err)

	require.Greater(t, len(initCode), common.AddressLength+4)
	assert.Equal(t, testFactory, common.BytesToAddress(initCode[:common.AddressLength]))
	// createAccount(address,uint256)
	assert.Equal(t, "0x5fbfb9cf", hexutil.Encode(initCode[common.AddressLength:common.AddressLength+4]))

	args, err := factoryABI.Methods["createAccount"].Inputs.Unpack(initCode[common.AddressLength+4:])
	require.NoError(t, err)
	assert.Equal(t, testOwner, args[0])
	assert.Equal(t, salt, args[1])
}

func TestPackExecute(t *testing.T) {
	target := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	inner := []byte{0xde, 0xad, 0xbe, 0xef}

	calldata, err := PackExecute(target, nil, inner)
	require.NoError(t, err)
	// execute(address,uint256,bytes)
	assert.Equal(t, "0xb61d27f6", hexutil.Encode(calldata[:4]))

	args, err := simpleAccountABI.Methods["execute"].Inputs.Unpack(calldata[4:])
	require.NoError(t, err)
	assert.Equal(t, target, args[0])
	assert.Equal(t, 0, big.NewInt(0).Cmp(args[1].(*big.Int)))
	assert.Equal(t, inner, args[2])
}

func TestEntryPointABI(t *testing.T) {
	parsed, err := EntryPointMetaData.GetAbi()
	require.NoError(t, err)

	for _, name := range []string{"balanceOf", "getNonce", "getUserOpHash"} {
		_, ok := parsed.Methods[name]
		assert.True(t, ok, "missing %s", name)
	}
	// v0.7 getUserOpHash((address,uint256,bytes,bytes,bytes32,uint256,bytes32,bytes,bytes))
	assert.Equal(t, "0x22cdde4c", hexutil.Encode(parsed.Methods["getUserOpHash"].ID))
}
