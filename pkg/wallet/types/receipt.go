package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types" // Alias to avoid conflict
)

// Receipt 是节点返回的交易回执摘要, 交易被打包之前不存在
type Receipt struct {
	TxHash            common.Hash     `json:"tx_hash"`
	BlockHash         common.Hash     `json:"block_hash"`
	BlockNumber       *big.Int        `json:"block_number"`
	Status            uint64          `json:"status"` // 1 success, 0 failure
	GasUsed           uint64          `json:"gas_used"`
	EffectiveGasPrice *big.Int        `json:"effective_gas_price,omitempty"`
	ContractAddress   *common.Address `json:"contract_address,omitempty"`
}

// NewReceipt converts a go-ethereum receipt.
func NewReceipt(r *ethtypes.Receipt) *Receipt {
	if r == nil {
		return nil
	}
	out := &Receipt{
		TxHash:            r.TxHash,
		BlockHash:         r.BlockHash,
		BlockNumber:       r.BlockNumber,
		Status:            r.Status,
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
	}
	if r.ContractAddress != (common.Address{}) {
		addr := r.ContractAddress
		out.ContractAddress = &addr
	}
	return out
}

// Succeeded reports whether execution succeeded on chain.
func (r *Receipt) Succeeded() bool {
	return r.Status == ethtypes.ReceiptStatusSuccessful
}
