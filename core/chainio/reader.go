package chainio

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Reader is the read-only chain client the vote pipeline consumes: contract
// calls, code lookups and the current gas price. eth.Client satisfies it.
type Reader interface {
	bind.ContractCaller

	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Backend is a Reader that can also send transactions and wait for them to be
// mined. Only the standard vote path and wallet creation need it.
type Backend interface {
	Reader
	bind.ContractBackend
	bind.DeployBackend
}
