package signer

import (
	"context"
	"errors"
	"math/big"

	"rect/pkg/errno"
	"rect/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types" // Alias to avoid conflict
	"go.uber.org/zap"
)

// StateReader 提供签名前需要的链上状态, 由 chain.Client 实现
type StateReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

var errNoStateReader = errors.New("no rpc endpoint to resolve it from")

// Signer 把 TransactionRequest 签名为可广播的原始交易
type Signer struct {
	reader StateReader
	log    *zap.Logger
}

// New creates a Signer. reader may be nil for fully specified (offline) requests.
func New(reader StateReader, log *zap.Logger) *Signer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Signer{reader: reader, log: log.Named("signer")}
}

// Sign 生成 EIP-155 legacy 交易并 RLP 编码
// key 只在本次调用内使用, 不保存也不打印
func (s *Signer) Sign(ctx context.Context, req *types.TransactionRequest, key *types.PrivateKey) (*types.SignedTransaction, error) {
	gasLimit := req.GasLimit()
	if !gasLimit.IsUint64() {
		return nil, errno.InvalidValue(gasLimit.Dec(), "gas", "gas limit exceeds 64 bits")
	}

	// 1. 补齐 nonce / chain id / gas price
	from := key.Address()
	nonce, err := s.nonce(ctx, req, from)
	if err != nil {
		return nil, err
	}
	chainID, err := s.chainID(ctx, req)
	if err != nil {
		return nil, err
	}
	gasPrice, err := s.gasPrice(ctx, req)
	if err != nil {
		return nil, err
	}

	// 2. 构造交易
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit.Uint64(),
		To:       req.To(),
		Value:    req.ValueBig(),
		Data:     req.Data(),
	})

	// 3. 签名 (chain id 参与签名, 防重放)
	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(chainID), key.ECDSA())
	if err != nil {
		return nil, errno.Others("sign transaction", err)
	}

	// 4. 序列化 (RLP Encoding)
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, errno.Others("encode transaction", err)
	}

	s.log.Debug("transaction signed",
		zap.String("from", from.Hex()),
		zap.Uint64("nonce", nonce),
		zap.String("chain_id", chainID.String()),
		zap.String("tx_hash", signed.Hash().Hex()),
	)
	return types.NewSignedTransaction(raw, signed.Hash()), nil
}

func (s *Signer) nonce(ctx context.Context, req *types.TransactionRequest, from common.Address) (uint64, error) {
	if n, ok := req.Nonce(); ok {
		return n, nil
	}
	if s.reader == nil {
		return 0, errno.Others("nonce not set", errNoStateReader)
	}
	n, err := s.reader.PendingNonceAt(ctx, from)
	if err != nil {
		return 0, unreachable(err)
	}
	return n, nil
}

func (s *Signer) chainID(ctx context.Context, req *types.TransactionRequest) (*big.Int, error) {
	if id := req.ChainID(); id != nil {
		return id.ToBig(), nil
	}
	if s.reader == nil {
		return nil, errno.Others("chain id not set", errNoStateReader)
	}
	id, err := s.reader.ChainID(ctx)
	if err != nil {
		return nil, unreachable(err)
	}
	return id, nil
}

func (s *Signer) gasPrice(ctx context.Context, req *types.TransactionRequest) (*big.Int, error) {
	if p := req.GasPrice(); p != nil {
		return p.ToBig(), nil
	}
	if s.reader == nil {
		return nil, errno.Others("gas price not set", errNoStateReader)
	}
	p, err := s.reader.SuggestGasPrice(ctx)
	if err != nil {
		return nil, unreachable(err)
	}
	return p, nil
}

// unreachable 签名前的状态查询失败归为 RpcUnreachable, 被取消时除外
func unreachable(err error) error {
	switch {
	case errors.Is(err, errno.ErrRpcUnreachable):
		return err
	case errors.Is(err, context.Canceled):
		if errors.Is(err, errno.ErrOthers) {
			return err
		}
		return errno.Others("state query cancelled", err)
	}
	return errno.RpcUnreachable(err)
}
