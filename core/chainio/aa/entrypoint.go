package aa

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
)

// EntryPointMetaData holds the subset of the EntryPoint v0.7 ABI the vote pipeline reads.
var EntryPointMetaData = &bind.MetaData{
	ABI: `[
	{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"sender","type":"address"},{"internalType":"uint192","name":"key","type":"uint192"}],"name":"getNonce","outputs":[{"internalType":"uint256","name":"nonce","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"components":[
		{"internalType":"address","name":"sender","type":"address"},
		{"internalType":"uint256","name":"nonce","type":"uint256"},
		{"internalType":"bytes","name":"initCode","type":"bytes"},
		{"internalType":"bytes","name":"callData","type":"bytes"},
		{"internalType":"bytes32","name":"accountGasLimits","type":"bytes32"},
		{"internalType":"uint256","name":"preVerificationGas","type":"uint256"},
		{"internalType":"bytes32","name":"gasFees","type":"bytes32"},
		{"internalType":"bytes","name":"paymasterAndData","type":"bytes"},
		{"internalType":"bytes","name":"signature","type":"bytes"}
	],"internalType":"struct PackedUserOperation","name":"userOp","type":"tuple"}],"name":"getUserOpHash","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"}
]`,
}

// EntryPointCaller is a read-only binding around the EntryPoint contract.
type EntryPointCaller struct {
	contract *bind.BoundContract
}

func NewEntryPointCaller(address common.Address, caller bind.ContractCaller) (*EntryPointCaller, error) {
	parsed, err := EntryPointMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return &EntryPointCaller{contract: bind.NewBoundContract(address, *parsed, caller, nil, nil)}, nil
}

// BalanceOf returns the deposit held by the EntryPoint for account.
//
// Solidity: function balanceOf(address account) view returns(uint256)
func (_EntryPoint *EntryPointCaller) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	err := _EntryPoint.contract.Call(opts, &out, "balanceOf", account)
	if err != nil {
		return *new(*big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// Solidity: function getNonce(address sender, uint192 key) view returns(uint256 nonce)
func (_EntryPoint *EntryPointCaller) GetNonce(opts *bind.CallOpts, sender common.Address, key *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _EntryPoint.contract.Call(opts, &out, "getNonce", sender, key)
	if err != nil {
		return *new(*big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// GetUserOpHash asks the EntryPoint for the canonical hash of op. The signature
// field is not part of the hash but must be present for ABI encoding.
//
// Solidity: function getUserOpHash(PackedUserOperation userOp) view returns(bytes32)
func (_EntryPoint *EntryPointCaller) GetUserOpHash(opts *bind.CallOpts, op userop.UserOperation) ([32]byte, error) {
	if op.Nonce == nil {
		op.Nonce = new(big.Int)
	}
	if op.PreVerificationGas == nil {
		op.PreVerificationGas = new(big.Int)
	}

	var out []interface{}
	err := _EntryPoint.contract.Call(opts, &out, "getUserOpHash", op)
	if err != nil {
		return *new([32]byte), err
	}

	out0 := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return out0, err
}

// EntryPoint binds the read calls the pipeline makes to one EntryPoint address.
type EntryPoint struct {
	address common.Address
	caller  *EntryPointCaller
}

func NewEntryPoint(address common.Address, caller bind.ContractCaller) (*EntryPoint, error) {
	c, err := NewEntryPointCaller(address, caller)
	if err != nil {
		return nil, err
	}
	return &EntryPoint{address: address, caller: c}, nil
}

func (e *EntryPoint) Address() common.Address {
	return e.address
}

func (e *EntryPoint) GetNonce(ctx context.Context, sender common.Address) (*big.Int, error) {
	return e.caller.GetNonce(&bind.CallOpts{Context: ctx}, sender, defaultNonceKey)
}

func (e *EntryPoint) GetUserOpHash(ctx context.Context, op *userop.UserOperation) ([32]byte, error) {
	return e.caller.GetUserOpHash(&bind.CallOpts{Context: ctx}, *op)
}

func (e *EntryPoint) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return e.caller.BalanceOf(&bind.CallOpts{Context: ctx}, account)
}
