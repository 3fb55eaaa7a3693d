package submitter

import (
	"context"
	"errors"
	"time"

	"rect/pkg/errno"
	"rect/pkg/monitor"
	"rect/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DefaultPollInterval is used when Options.PollInterval is not set.
const DefaultPollInterval = time.Second

// TxSigner 由 signer.Signer 实现
type TxSigner interface {
	Sign(ctx context.Context, req *types.TransactionRequest, key *types.PrivateKey) (*types.SignedTransaction, error)
}

// Node 由 chain.Client 实现
type Node interface {
	Broadcast(ctx context.Context, raw []byte) (common.Hash, error)
	GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type Options struct {
	PollInterval  time.Duration
	Confirmations uint64 // blocks required on top of the inclusion block
	Metrics       *monitor.SubmitMetrics
	Logger        *zap.Logger
	// OnStage is called on every stage transition, e.g. for CLI progress output.
	OnStage func(stage Stage, hash common.Hash)
}

// Submitter 组合 Signer 与 Node: 签名, 广播, 以及可选的等待确认
// 任何一步失败都原样返回给调用方, 不做重试
type Submitter struct {
	signer        TxSigner
	node          Node
	pollInterval  time.Duration
	confirmations uint64
	metrics       *monitor.SubmitMetrics
	log           *zap.Logger
	onStage       func(Stage, common.Hash)
}

func New(signer TxSigner, node Node, opts Options) *Submitter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Submitter{
		signer:        signer,
		node:          node,
		pollInterval:  opts.PollInterval,
		confirmations: opts.Confirmations,
		metrics:       opts.Metrics,
		log:           opts.Logger.Named("submitter"),
		onStage:       opts.OnStage,
	}
}

// Send 签名并广播, 立即返回交易哈希 (fire-and-forget)
func (s *Submitter) Send(ctx context.Context, req *types.TransactionRequest, key *types.PrivateKey) (common.Hash, error) {
	signed, err := s.sign(ctx, req, key)
	if err != nil {
		s.metrics.Outcome(monitor.OutcomeError)
		return common.Hash{}, err
	}
	return s.SendSigned(ctx, signed)
}

// SendSigned broadcasts an already signed transaction once.
func (s *Submitter) SendSigned(ctx context.Context, signed *types.SignedTransaction) (common.Hash, error) {
	hash, err := s.broadcast(ctx, signed)
	if err != nil {
		s.metrics.Outcome(monitor.OutcomeError)
		return common.Hash{}, err
	}
	s.metrics.Outcome(monitor.OutcomeBroadcast)
	return hash, nil
}

// SendAndConfirm 签名, 广播, 然后轮询回执直到确认或超时
// timeout 是整条流水线的总时限 (包括签名前的 nonce 查询和广播本身)
//
// 返回:
//   - 成功执行: receipt, nil
//   - 执行失败 (status 0): receipt, TxFailed(hash)
//   - 超时: nil, Timeout(hash), 交易可能仍在 pending
func (s *Submitter) SendAndConfirm(ctx context.Context, req *types.TransactionRequest, key *types.PrivateKey, timeout time.Duration) (*types.Receipt, error) {
	if timeout <= 0 {
		return nil, errno.InvalidValue(timeout.String(), "timeout", "must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	signed, err := s.sign(ctx, req, key)
	if err != nil {
		if expired(ctx) {
			err = errno.Timeout("", err)
			s.enter(StageTimedOut, common.Hash{})
		}
		s.finish(err)
		return nil, err
	}
	return s.confirm(ctx, signed)
}

// ConfirmSigned is SendAndConfirm for an already signed transaction.
func (s *Submitter) ConfirmSigned(ctx context.Context, signed *types.SignedTransaction, timeout time.Duration) (*types.Receipt, error) {
	if timeout <= 0 {
		return nil, errno.InvalidValue(timeout.String(), "timeout", "must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.confirm(ctx, signed)
}

func (s *Submitter) confirm(ctx context.Context, signed *types.SignedTransaction) (*types.Receipt, error) {
	hash := signed.Hash()

	if _, err := s.broadcast(ctx, signed); err != nil {
		if expired(ctx) {
			err = errno.Timeout(hash.Hex(), err)
			s.enter(StageTimedOut, hash)
		}
		s.finish(err)
		return nil, err
	}

	start := time.Now()
	receipt, err := s.waitReceipt(ctx, hash)
	if receipt != nil {
		s.metrics.Confirmed(time.Since(start))
	}
	s.finish(err)
	return receipt, err
}

func (s *Submitter) sign(ctx context.Context, req *types.TransactionRequest, key *types.PrivateKey) (*types.SignedTransaction, error) {
	s.enter(StageSigning, common.Hash{})
	signed, err := s.signer.Sign(ctx, req, key)
	if err != nil {
		s.log.Warn("signing failed", zap.Error(err))
		return nil, err
	}
	return signed, nil
}

func (s *Submitter) broadcast(ctx context.Context, signed *types.SignedTransaction) (common.Hash, error) {
	hash := signed.Hash()
	s.enter(StageBroadcasting, hash)

	got, err := s.node.Broadcast(ctx, signed.Raw())
	if err != nil {
		s.metrics.Broadcast(broadcastResult(err))
		s.log.Warn("broadcast failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		return common.Hash{}, err
	}
	s.metrics.Broadcast("ok")

	if got != hash {
		// 以本地计算的哈希为准
		s.log.Warn("node returned a different tx hash",
			zap.String("local", hash.Hex()), zap.String("node", got.Hex()))
	}
	s.log.Info("transaction broadcast", zap.String("tx_hash", hash.Hex()))
	return hash, nil
}

// waitReceipt 立即查询一次, 之后每 pollInterval 查询一次
// ctx 到期后不再发起请求, 不会留下后台 goroutine
func (s *Submitter) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	s.enter(StagePolling, hash)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, done, err := s.poll(ctx, hash)
		if err != nil {
			if expired(ctx) {
				s.enter(StageTimedOut, hash)
				return nil, errno.Timeout(hash.Hex(), err)
			}
			return nil, err
		}
		if done {
			if !receipt.Succeeded() {
				s.enter(StageReverted, hash)
				return receipt, errno.TxFailed(hash.Hex())
			}
			s.enter(StageConfirmed, hash)
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			if expired(ctx) {
				s.enter(StageTimedOut, hash)
				return nil, errno.Timeout(hash.Hex(), nil)
			}
			return nil, errno.Others("confirmation cancelled", ctx.Err())
		case <-ticker.C:
		}
	}
}

// poll 做一轮查询. done 为 true 表示已得到最终结果
func (s *Submitter) poll(ctx context.Context, hash common.Hash) (*types.Receipt, bool, error) {
	s.metrics.Poll()
	receipt, err := s.node.GetReceipt(ctx, hash)
	if err != nil || receipt == nil {
		return nil, false, err
	}

	// 失败的交易不需要等待确认数
	if !receipt.Succeeded() || s.confirmations == 0 || receipt.BlockNumber == nil {
		return receipt, true, nil
	}

	head, err := s.node.BlockNumber(ctx)
	if err != nil {
		return nil, false, err
	}
	included := receipt.BlockNumber.Uint64()
	if head < included+s.confirmations {
		s.log.Debug("waiting for confirmations",
			zap.String("tx_hash", hash.Hex()),
			zap.Uint64("included", included),
			zap.Uint64("head", head),
			zap.Uint64("required", s.confirmations))
		return nil, false, nil
	}
	return receipt, true, nil
}

func (s *Submitter) enter(stage Stage, hash common.Hash) {
	fields := []zap.Field{zap.Stringer("stage", stage)}
	if hash != (common.Hash{}) {
		fields = append(fields, zap.String("tx_hash", hash.Hex()))
	}
	s.log.Debug("stage", fields...)
	if s.onStage != nil {
		s.onStage(stage, hash)
	}
}

// finish 记录确认流程的最终结果
func (s *Submitter) finish(err error) {
	switch errno.Kind(err) {
	case errno.OK:
		s.metrics.Outcome(monitor.OutcomeConfirmed)
	case errno.ErrTxFailed:
		s.metrics.Outcome(monitor.OutcomeReverted)
	case errno.ErrTimeout:
		s.metrics.Outcome(monitor.OutcomeTimedOut)
	default:
		s.metrics.Outcome(monitor.OutcomeError)
	}
}

func expired(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func broadcastResult(err error) string {
	switch errno.Kind(err) {
	case errno.ErrRpcUnreachable:
		return "unreachable"
	case errno.ErrOthers:
		return "rejected"
	default:
		return "error"
	}
}
