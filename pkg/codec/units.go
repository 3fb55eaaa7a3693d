package codec

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// FormatEther 将 wei 转成 ether 的十进制表示, 去掉末尾的 0
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, etherDecimals)
}

// FormatUnits renders v scaled down by 10^decimals.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// Fee 计算 gasUsed * gasPrice (wei)
func Fee(gasUsed uint64, gasPrice *big.Int) *big.Int {
	if gasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), gasPrice)
}
