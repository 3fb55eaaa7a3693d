package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// DefaultGasLimit is used when the caller does not set a gas limit.
const DefaultGasLimit = 100000

// TransactionRequest 描述一笔待签名的交易
// 构造完成后不可修改: 字段均为私有, getter 返回副本
// 广播失败后重试需要重新构造 (重新获取 nonce)
type TransactionRequest struct {
	to       *common.Address
	value    *uint256.Int
	gasLimit *uint256.Int
	gasPrice *uint256.Int
	data     []byte
	nonce    *uint64
	chainID  *uint256.Int
}

// Option configures a TransactionRequest at construction time.
type Option func(*TransactionRequest)

// NewTransactionRequest 构造请求, 未设置的字段使用默认值:
// value = 0, gas limit = 100000, data 为空, gas price / nonce / chain id 留空由 Signer 补齐
func NewTransactionRequest(opts ...Option) *TransactionRequest {
	r := &TransactionRequest{
		value:    new(uint256.Int),
		gasLimit: uint256.NewInt(DefaultGasLimit),
		data:     []byte{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTo sets the destination. Without it the request is a contract creation.
func WithTo(to common.Address) Option {
	return func(r *TransactionRequest) {
		r.to = &to
	}
}

func WithValue(v *uint256.Int) Option {
	return func(r *TransactionRequest) {
		if v != nil {
			r.value = v.Clone()
		}
	}
}

func WithGasLimit(v *uint256.Int) Option {
	return func(r *TransactionRequest) {
		if v != nil {
			r.gasLimit = v.Clone()
		}
	}
}

func WithGasPrice(v *uint256.Int) Option {
	return func(r *TransactionRequest) {
		if v != nil {
			r.gasPrice = v.Clone()
		}
	}
}

func WithData(data []byte) Option {
	return func(r *TransactionRequest) {
		r.data = common.CopyBytes(data)
		if r.data == nil {
			r.data = []byte{}
		}
	}
}

func WithNonce(nonce uint64) Option {
	return func(r *TransactionRequest) {
		r.nonce = &nonce
	}
}

func WithChainID(v *uint256.Int) Option {
	return func(r *TransactionRequest) {
		if v != nil {
			r.chainID = v.Clone()
		}
	}
}

// To returns a copy of the destination, or nil for contract creation.
func (r *TransactionRequest) To() *common.Address {
	if r.to == nil {
		return nil
	}
	to := *r.to
	return &to
}

func (r *TransactionRequest) Value() *uint256.Int    { return r.value.Clone() }
func (r *TransactionRequest) GasLimit() *uint256.Int { return r.gasLimit.Clone() }
func (r *TransactionRequest) Data() []byte           { return common.CopyBytes(r.data) }

// GasPrice returns nil when the node suggestion should be used.
func (r *TransactionRequest) GasPrice() *uint256.Int {
	if r.gasPrice == nil {
		return nil
	}
	return r.gasPrice.Clone()
}

// Nonce 第二个返回值表示是否显式设置
func (r *TransactionRequest) Nonce() (uint64, bool) {
	if r.nonce == nil {
		return 0, false
	}
	return *r.nonce, true
}

// ChainID returns nil when the chain id must be fetched from the node.
func (r *TransactionRequest) ChainID() *uint256.Int {
	if r.chainID == nil {
		return nil
	}
	return r.chainID.Clone()
}

// ValueBig is Value as *big.Int for go-ethereum APIs.
func (r *TransactionRequest) ValueBig() *big.Int {
	return r.value.ToBig()
}

// SignedTransaction represents the result of the signing process.
type SignedTransaction struct {
	TxHash string `json:"tx_hash"` // Transaction Hash
	RawTx  string `json:"raw_tx"`  // RLP Encoded Hex String (ready to broadcast)

	raw  []byte
	hash common.Hash
}

// NewSignedTransaction 由 Signer 产出, 或由已签名的原始字节重建
func NewSignedTransaction(raw []byte, hash common.Hash) *SignedTransaction {
	return &SignedTransaction{
		TxHash: hash.Hex(),
		RawTx:  hexutil.Encode(raw),
		raw:    common.CopyBytes(raw),
		hash:   hash,
	}
}

// Raw returns the RLP encoded bytes.
func (s *SignedTransaction) Raw() []byte {
	return common.CopyBytes(s.raw)
}

func (s *SignedTransaction) Hash() common.Hash {
	return s.hash
}
