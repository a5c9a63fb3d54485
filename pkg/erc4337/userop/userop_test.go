package userop

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackAccountGasLimits_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	values := []uint32{0, 1, 150000, 90000, 0xffffffff}
	for i := 0; i < 200; i++ {
		values = append(values, r.Uint32())
	}

	for i := 0; i < len(values); i++ {
		v := big.NewInt(int64(values[i]))
		c := big.NewInt(int64(values[len(values)-1-i]))

		packed, err := PackAccountGasLimits(v, c)
		require.NoError(t, err)

		gotV, gotC := UnpackAccountGasLimits(packed)
		assert.Equal(t, 0, v.Cmp(gotV), "verification gas mismatch for %d", values[i])
		assert.Equal(t, 0, c.Cmp(gotC), "call gas mismatch for %d", values[len(values)-1-i])
	}
}

func TestPackAccountGasLimits_NoCrossContamination(t *testing.T) {
	packed, err := PackAccountGasLimits(big.NewInt(0), big.NewInt(0xffffffff))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), packed[:16], "high half must stay zero")

	packed, err = PackAccountGasLimits(big.NewInt(0xffffffff), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), packed[16:], "low half must stay zero")
}

func TestPackAccountGasLimitsHex_MatchesBytes(t *testing.T) {
	v := big.NewInt(150000)
	c := big.NewInt(150000)

	hexValue, err := PackAccountGasLimitsHex(v, c)
	require.NoError(t, err)
	assert.Len(t, hexValue, 2+64)
	assert.Equal(t, "0x"+strings.Repeat("0", 27)+"249f0"+strings.Repeat("0", 27)+"249f0", hexValue)

	packed, err := PackAccountGasLimits(v, c)
	require.NoError(t, err)
	assert.Equal(t, hexValue, hexutil.Encode(packed[:]))
}

func TestPackAccountGasLimits_RejectsOverflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)

	_, err := PackAccountGasLimits(tooBig, big.NewInt(1))
	assert.Error(t, err)

	_, err = PackAccountGasLimits(big.NewInt(1), big.NewInt(-1))
	assert.Error(t, err)

	_, err = PackAccountGasLimits(nil, big.NewInt(1))
	assert.Error(t, err)
}

func TestPackGasFees_RoundTrip(t *testing.T) {
	priority := big.NewInt(1_500_000_000)
	maxFee := big.NewInt(12_000_000_000)

	packed, err := PackGasFees(priority, maxFee)
	require.NoError(t, err)

	gotPriority, gotMax := UnpackGasFees(packed)
	assert.Equal(t, priority, gotPriority)
	assert.Equal(t, maxFee, gotMax)
}

func TestUserOperation_Accessors(t *testing.T) {
	paymaster := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	limits, err := PackAccountGasLimits(big.NewInt(150000), big.NewInt(120000))
	require.NoError(t, err)

	op := &UserOperation{
		Sender:             common.HexToAddress("0x01"),
		Nonce:              big.NewInt(3),
		AccountGasLimits:   limits,
		PreVerificationGas: big.NewInt(90000),
		PaymasterAndData:   paymaster.Bytes(),
	}

	assert.Equal(t, big.NewInt(150000), op.VerificationGasLimit())
	assert.Equal(t, big.NewInt(120000), op.CallGasLimit())
	assert.Equal(t, big.NewInt(360000), op.TotalGas())
	assert.Equal(t, paymaster, op.Paymaster())
}

func TestUserOperation_PaymasterShortData(t *testing.T) {
	op := &UserOperation{PaymasterAndData: []byte{0x01, 0x02}}
	assert.Equal(t, common.Address{}, op.Paymaster())
}
