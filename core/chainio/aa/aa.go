package aa

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SimpleAccountMetaData is the one SimpleAccount method the vote call goes through.
var SimpleAccountMetaData = &bind.MetaData{
	ABI: `[{"inputs":[{"internalType":"address","name":"dest","type":"address"},{"internalType":"uint256","name":"value","type":"uint256"},{"internalType":"bytes","name":"func","type":"bytes"}],"name":"execute","outputs":[],"stateMutability":"nonpayable","type":"function"}]`,
}

var (
	abiOnce          sync.Once
	abiErr           error
	factoryABI       *abi.ABI
	simpleAccountABI *abi.ABI

	// default EntryPoint nonce key
	defaultNonceKey = big.NewInt(0)
)

func loadABIs() error {
	abiOnce.Do(func() {
		factoryABI, abiErr = SimpleFactoryMetaData.GetAbi()
		if abiErr != nil {
			abiErr = fmt.Errorf("Invalid factory ABI: %w", abiErr)
			return
		}
		simpleAccountABI, abiErr = SimpleAccountMetaData.GetAbi()
		if abiErr != nil {
			abiErr = fmt.Errorf("Invalid simple account ABI: %w", abiErr)
		}
	})
	return abiErr
}

// SaltFor derives the factory salt for owner on chainID: keccak256 of
// "<lowercase owner hex>_<chain id>" read as a big-endian integer. Scoping by
// chain keeps a wallet address from one network out of another.
func SaltFor(owner common.Address, chainID *big.Int) *big.Int {
	scoped := strings.ToLower(owner.Hex()) + "_" + chainID.String()
	return new(big.Int).SetBytes(crypto.Keccak256([]byte(scoped)))
}

// GetInitCode returns factory address ++ createAccount(owner, salt) calldata.
func GetInitCode(factoryAddress, owner common.Address, salt *big.Int) ([]byte, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}

	calldata, err := factoryABI.Pack("createAccount", owner, salt)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, common.AddressLength+len(calldata))
	data = append(data, factoryAddress.Bytes()...)
	data = append(data, calldata...)
	return data, nil
}

// GetSenderAddress asks the factory for the counterfactual wallet of owner.
// The wallet does not need to be deployed.
func GetSenderAddress(ctx context.Context, caller bind.ContractCaller, factoryAddress, owner common.Address, salt *big.Int) (common.Address, error) {
	factory, err := NewSimpleFactoryCaller(factoryAddress, caller)
	if err != nil {
		return common.Address{}, err
	}

	return factory.GetAddress(&bind.CallOpts{Context: ctx}, owner, salt)
}

// PackExecute generates the SimpleAccount.execute calldata for a user operation.
func PackExecute(targetAddress common.Address, ethValue *big.Int, calldata []byte) ([]byte, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}
	if ethValue == nil {
		ethValue = new(big.Int)
	}

	return simpleAccountABI.Pack("execute", targetAddress, ethValue, calldata)
}
