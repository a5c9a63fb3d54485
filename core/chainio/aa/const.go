package aa

import (
	"github.com/ethereum/go-ethereum/common"
)

var (
	// EntryPoint v0.7, same address on every chain.
	EntrypointAddress = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	// eth-infinitism SimpleAccountFactory for v0.7.
	DefaultFactoryAddress = common.HexToAddress("0x91E60e0613810449d098b0b5Ec8b51A0FE8c8985")
)
