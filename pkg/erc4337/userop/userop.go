// Package userop holds the EntryPoint v0.7 packed user operation and the
// helpers to pack and unpack its 32-byte gas fields.
package userop

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxUint128 bounds each half of a packed 32-byte field.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// UserOperation is the EntryPoint v0.7 PackedUserOperation. Field names match
// the ABI tuple components so the struct can be passed to abi.Pack directly.
type UserOperation struct {
	Sender             common.Address
	Nonce              *big.Int
	InitCode           []byte
	CallData           []byte
	AccountGasLimits   [32]byte
	PreVerificationGas *big.Int
	GasFees            [32]byte
	PaymasterAndData   []byte
	Signature          []byte
}

// PackAccountGasLimits packs verificationGasLimit into the high 16 bytes and
// callGasLimit into the low 16 bytes, both big-endian and zero padded.
func PackAccountGasLimits(verificationGasLimit, callGasLimit *big.Int) ([32]byte, error) {
	return packHalves(verificationGasLimit, callGasLimit)
}

// UnpackAccountGasLimits is the inverse of PackAccountGasLimits.
func UnpackAccountGasLimits(packed [32]byte) (verificationGasLimit, callGasLimit *big.Int) {
	return new(big.Int).SetBytes(packed[0:16]), new(big.Int).SetBytes(packed[16:32])
}

// PackGasFees packs maxPriorityFeePerGas (high) and maxFeePerGas (low).
func PackGasFees(maxPriorityFeePerGas, maxFeePerGas *big.Int) ([32]byte, error) {
	return packHalves(maxPriorityFeePerGas, maxFeePerGas)
}

// UnpackGasFees is the inverse of PackGasFees.
func UnpackGasFees(packed [32]byte) (maxPriorityFeePerGas, maxFeePerGas *big.Int) {
	return new(big.Int).SetBytes(packed[0:16]), new(big.Int).SetBytes(packed[16:32])
}

// PackAccountGasLimitsHex renders the packed field as 0x + 32 hex chars per half.
func PackAccountGasLimitsHex(verificationGasLimit, callGasLimit *big.Int) (string, error) {
	if err := checkUint128(verificationGasLimit); err != nil {
		return "", fmt.Errorf("verificationGasLimit: %w", err)
	}
	if err := checkUint128(callGasLimit); err != nil {
		return "", fmt.Errorf("callGasLimit: %w", err)
	}
	return fmt.Sprintf("0x%032x%032x", verificationGasLimit, callGasLimit), nil
}

func packHalves(high, low *big.Int) ([32]byte, error) {
	var out [32]byte
	if err := checkUint128(high); err != nil {
		return out, err
	}
	if err := checkUint128(low); err != nil {
		return out, err
	}
	high.FillBytes(out[0:16])
	low.FillBytes(out[16:32])
	return out, nil
}

func checkUint128(v *big.Int) error {
	if v == nil {
		return fmt.Errorf("value is nil")
	}
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return fmt.Errorf("value %s does not fit in 128 bits", v.String())
	}
	return nil
}

// VerificationGasLimit returns the high half of AccountGasLimits.
func (op *UserOperation) VerificationGasLimit() *big.Int {
	v, _ := UnpackAccountGasLimits(op.AccountGasLimits)
	return v
}

// CallGasLimit returns the low half of AccountGasLimits.
func (op *UserOperation) CallGasLimit() *big.Int {
	_, c := UnpackAccountGasLimits(op.AccountGasLimits)
	return c
}

// TotalGas is verificationGasLimit + callGasLimit + preVerificationGas.
func (op *UserOperation) TotalGas() *big.Int {
	total := new(big.Int).Add(op.VerificationGasLimit(), op.CallGasLimit())
	if op.PreVerificationGas != nil {
		total.Add(total, op.PreVerificationGas)
	}
	return total
}

// Paymaster returns the first 20 bytes of PaymasterAndData, or the zero address.
func (op *UserOperation) Paymaster() common.Address {
	if len(op.PaymasterAndData) < common.AddressLength {
		return common.Address{}
	}
	return common.BytesToAddress(op.PaymasterAndData[:common.AddressLength])
}

func (op *UserOperation) String() string {
	return fmt.Sprintf("UserOperation{sender=%s nonce=%v callData=%s accountGasLimits=%s preVerificationGas=%v paymaster=%s}",
		op.Sender.Hex(), op.Nonce, hexutil.Encode(op.CallData), hexutil.Encode(op.AccountGasLimits[:]),
		op.PreVerificationGas, op.Paymaster().Hex())
}
