package chain

import (
	"context"
	"errors"
	"math/big"
	"net"
	"net/http"
	"time"

	"rect/pkg/errno"
	"rect/pkg/wallet/types"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Config 节点连接参数
type Config struct {
	URL         string
	DialTimeout time.Duration // TCP connect
	CallTimeout time.Duration // each JSON-RPC round trip
}

// Client 是到单个 JSON-RPC 节点的 HTTP 连接
// 每个方法恰好发起一次网络请求, 不做重试
type Client struct {
	cfg Config
	rc  *gethrpc.Client
	ec  *ethclient.Client
	log *zap.Logger
}

// Dial 创建客户端. HTTP 传输是惰性的, 这里不会产生网络请求
func Dial(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errno.InvalidValue(cfg.URL, "rpc", "empty endpoint")
	}
	if log == nil {
		log = zap.NewNop()
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: cfg.DialTimeout,
			MaxIdleConnsPerHost: 2,
		},
	}

	rc, err := gethrpc.DialOptions(ctx, cfg.URL, gethrpc.WithHTTPClient(httpClient))
	if err != nil {
		// 不支持的 scheme 等
		return nil, errno.RpcUnreachable(err)
	}

	return &Client{
		cfg: cfg,
		rc:  rc,
		ec:  ethclient.NewClient(rc),
		log: log.Named("chain"),
	}, nil
}

func (c *Client) Close() {
	c.rc.Close()
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.CallTimeout)
}

// Broadcast sends eth_sendRawTransaction and returns the hash reported by the node.
func (c *Client) Broadcast(ctx context.Context, raw []byte) (common.Hash, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var hash common.Hash
	if err := c.rc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		c.log.Debug("eth_sendRawTransaction failed", zap.Error(err))
		return common.Hash{}, classify("eth_sendRawTransaction", err)
	}
	c.log.Debug("eth_sendRawTransaction", zap.String("tx_hash", hash.Hex()))
	return hash, nil
}

// GetReceipt returns nil, nil while the transaction is not mined.
func (c *Client) GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	r, err := c.ec.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("eth_getTransactionReceipt", err)
	}
	return types.NewReceipt(r), nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	id, err := c.ec.ChainID(ctx)
	if err != nil {
		return nil, classify("eth_chainId", err)
	}
	return id, nil
}

// PendingNonceAt 使用 "pending" 标签, 把内存池中的交易也计入
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	nonce, err := c.ec.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, classify("eth_getTransactionCount", err)
	}
	return nonce, nil
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	price, err := c.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classify("eth_gasPrice", err)
	}
	return price, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	n, err := c.ec.BlockNumber(ctx)
	if err != nil {
		return 0, classify("eth_blockNumber", err)
	}
	return n, nil
}
