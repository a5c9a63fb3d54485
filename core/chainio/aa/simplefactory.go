package aa

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SimpleFactoryMetaData contains the account factory methods used to derive and deploy smart wallets.
var SimpleFactoryMetaData = &bind.MetaData{
	ABI: `[
	{"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"uint256","name":"salt","type":"uint256"}],"name":"createAccount","outputs":[{"internalType":"contract SimpleAccount","name":"ret","type":"address"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"uint256","name":"salt","type":"uint256"}],"name":"getAddress","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`,
}

// SimpleFactory is a Go binding around the smart wallet factory.
type SimpleFactory struct {
	SimpleFactoryCaller     // Read-only binding to the contract
	SimpleFactoryTransactor // Write-only binding to the contract
}

// SimpleFactoryCaller is a read-only binding around the factory.
type SimpleFactoryCaller struct {
	contract *bind.BoundContract
}

// SimpleFactoryTransactor is a write-only binding around the factory.
type SimpleFactoryTransactor struct {
	contract *bind.BoundContract
}

func bindSimpleFactory(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := SimpleFactoryMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// NewSimpleFactory creates a read/write binding; backend must be able to send transactions.
func NewSimpleFactory(address common.Address, backend bind.ContractBackend) (*SimpleFactory, error) {
	contract, err := bindSimpleFactory(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &SimpleFactory{
		SimpleFactoryCaller:     SimpleFactoryCaller{contract: contract},
		SimpleFactoryTransactor: SimpleFactoryTransactor{contract: contract},
	}, nil
}

// NewSimpleFactoryCaller creates a read-only instance of SimpleFactory.
func NewSimpleFactoryCaller(address common.Address, caller bind.ContractCaller) (*SimpleFactoryCaller, error) {
	contract, err := bindSimpleFactory(address, caller, nil, nil)
	if err != nil {
		return nil, err
	}
	return &SimpleFactoryCaller{contract: contract}, nil
}

// GetAddress is a free data retrieval call binding the contract method 0x8cb84e18.
//
// Solidity: function getAddress(address owner, uint256 salt) view returns(address)
func (_SimpleFactory *SimpleFactoryCaller) GetAddress(opts *bind.CallOpts, owner common.Address, salt *big.Int) (common.Address, error) {
	var out []interface{}
	err := _SimpleFactory.contract.Call(opts, &out, "getAddress", owner, salt)

	if err != nil {
		return *new(common.Address), err
	}

	out0 := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)

	return out0, err
}

// CreateAccount is a paid mutator transaction binding the contract method 0x5fbfb9cf.
//
// Solidity: function createAccount(address owner, uint256 salt) returns(address ret)
func (_SimpleFactory *SimpleFactoryTransactor) CreateAccount(opts *bind.TransactOpts, owner common.Address, salt *big.Int) (*types.Transaction, error) {
	return _SimpleFactory.contract.Transact(opts, "createAccount", owner, salt)
}
