package config

import "math/big"

const (
	EnvVoterPrivateKey  = "VOTER_ECDSA_PRIVATE_KEY"
	EnvVoterKeyPassword = "VOTER_ECDSA_KEY_PASSWORD"
)

var (
	MainnetChainID = big.NewInt(1)
	SepoliaChainID = big.NewInt(11155111)
	BaseChainID    = big.NewInt(8453)
)

func IsMainnet(chainID *big.Int) bool {
	return chainID != nil && chainID.Cmp(MainnetChainID) == 0
}

// EtherscanURL returns the explorer for chainID, empty when unknown.
func EtherscanURL(chainID *big.Int) string {
	switch {
	case chainID == nil:
		return ""
	case chainID.Cmp(MainnetChainID) == 0:
		return "https://etherscan.io"
	case chainID.Cmp(SepoliaChainID) == 0:
		return "https://sepolia.etherscan.io"
	case chainID.Cmp(BaseChainID) == 0:
		return "https://basescan.org"
	}
	return ""
}

// TxURL links a transaction hash on the explorer for chainID.
func TxURL(chainID *big.Int, txHash string) string {
	base := EtherscanURL(chainID)
	if base == "" {
		return ""
	}
	return base + "/tx/" + txHash
}
