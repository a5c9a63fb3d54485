package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SmartWallet is the counterfactual account a voter's gasless votes are sent from.
type SmartWallet struct {
	Owner    *common.Address `json:"owner"`
	Address  *common.Address `json:"address"`
	Factory  *common.Address `json:"factory,omitempty"`
	Salt     *big.Int        `json:"salt"`
	ChainID  *big.Int        `json:"chain_id"`
	Deployed bool            `json:"deployed"`
}

func (w *SmartWallet) ToJSON() ([]byte, error) {
	return json.Marshal(w)
}

func (w *SmartWallet) FromStorageData(body []byte) error {
	err := json.Unmarshal(body, w)

	return err
}
