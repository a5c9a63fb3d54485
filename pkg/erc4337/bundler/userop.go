package bundler

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
)

// UserOperationRequest is the unpacked v0.7 shape bundlers accept over JSON-RPC.
// Every integer is a 0x-prefixed hex quantity.
type UserOperationRequest struct {
	Sender               common.Address `json:"sender"`
	Nonce                string         `json:"nonce"`
	Factory              string         `json:"factory,omitempty"`
	FactoryData          string         `json:"factoryData,omitempty"`
	CallData             string         `json:"callData"`
	CallGasLimit         string         `json:"callGasLimit"`
	VerificationGasLimit string         `json:"verificationGasLimit"`
	PreVerificationGas   string         `json:"preVerificationGas"`
	MaxFeePerGas         string         `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string         `json:"maxPriorityFeePerGas"`
	Signature            string         `json:"signature"`
	Paymaster            string         `json:"paymaster"`
}

// NewUserOperationRequest unpacks op into the RPC shape using the given fee quote.
func NewUserOperationRequest(op *userop.UserOperation, fees eip1559.Fees) UserOperationRequest {
	verificationGasLimit, callGasLimit := userop.UnpackAccountGasLimits(op.AccountGasLimits)

	req := UserOperationRequest{
		Sender:               op.Sender,
		Nonce:                encodeBig(op.Nonce),
		CallData:             hexutil.Encode(op.CallData),
		CallGasLimit:         encodeBig(callGasLimit),
		VerificationGasLimit: encodeBig(verificationGasLimit),
		PreVerificationGas:   encodeBig(op.PreVerificationGas),
		MaxFeePerGas:         encodeBig(fees.MaxFeePerGas),
		MaxPriorityFeePerGas: encodeBig(fees.MaxPriorityFeePerGas),
		Signature:            hexutil.Encode(op.Signature),
		Paymaster:            op.Paymaster().Hex(),
	}

	if len(op.InitCode) >= common.AddressLength {
		req.Factory = common.BytesToAddress(op.InitCode[:common.AddressLength]).Hex()
		req.FactoryData = hexutil.Encode(op.InitCode[common.AddressLength:])
	}

	return req
}

func encodeBig(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// UserOperationReceipt is the subset of eth_getUserOperationReceipt we report.
type UserOperationReceipt struct {
	UserOpHash    common.Hash    `json:"userOpHash"`
	Sender        common.Address `json:"sender"`
	Paymaster     common.Address `json:"paymaster"`
	Nonce         *hexutil.Big   `json:"nonce"`
	Success       bool           `json:"success"`
	ActualGasCost *hexutil.Big   `json:"actualGasCost"`
	ActualGasUsed *hexutil.Big   `json:"actualGasUsed"`
	Reason        string         `json:"reason,omitempty"`
	Receipt       struct {
		TransactionHash common.Hash  `json:"transactionHash"`
		BlockNumber     *hexutil.Big `json:"blockNumber"`
	} `json:"receipt"`
}
