package vote

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
)

// Builder assembles unsigned vote user operations.
type Builder struct {
	strategy  Strategy
	paymaster common.Address
	limits    sponsor.GasLimits
}

func NewBuilder(s Strategy, paymaster common.Address, limits sponsor.GasLimits) *Builder {
	if limits.Total().Sign() == 0 {
		limits = sponsor.DefaultGasLimits()
	}
	return &Builder{strategy: s, paymaster: paymaster, limits: limits}
}

func (b *Builder) Strategy() Strategy {
	return b.strategy
}

// Build returns the unsigned operation sending intent's vote from sender.
// gasFees stays zero and the signature empty.
func (b *Builder) Build(intent *model.VoteIntent, sender common.Address, nonce *big.Int) (*userop.UserOperation, error) {
	if nonce == nil {
		return nil, fmt.Errorf("nonce is required")
	}

	voteData, err := b.strategy.EncodeVote(intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vote: %w", err)
	}

	callData, err := aa.PackExecute(b.strategy.Address, big.NewInt(0), voteData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execute call: %w", err)
	}

	accountGasLimits, err := userop.PackAccountGasLimits(b.limits.VerificationGasLimit, b.limits.CallGasLimit)
	if err != nil {
		return nil, err
	}

	return &userop.UserOperation{
		Sender:             sender,
		Nonce:              new(big.Int).Set(nonce),
		InitCode:           []byte{},
		CallData:           callData,
		AccountGasLimits:   accountGasLimits,
		PreVerificationGas: new(big.Int).Set(b.limits.PreVerificationGas),
		PaymasterAndData:   b.paymaster.Bytes(),
		Signature:          []byte{},
	}, nil
}

// ApplyFees packs fees into op.GasFees. It must run before the hash is fetched.
func ApplyFees(op *userop.UserOperation, fees eip1559.Fees) error {
	packed, err := userop.PackGasFees(fees.MaxPriorityFeePerGas, fees.MaxFeePerGas)
	if err != nil {
		return err
	}
	op.GasFees = packed
	return nil
}
