package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rect/pkg/errno"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// classify 把一次调用的失败归类:
// 节点返回了 JSON-RPC error 对象 => Others (节点拒绝, 例如 nonce too low)
// 节点返回的结果无法解码        => Others
// 调用方取消 (SIGINT)                => Others, 保留 context.Canceled
// 其余 (拨号失败, 连接被拒, 非 200 的 HTTP 状态, 调用超时) => RpcUnreachable
func classify(method string, err error) error {
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return errno.Others(fmt.Sprintf("%s rejected (code %d)", method, rpcErr.ErrorCode()), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return errno.Others(method+" returned a malformed result", err)
	}

	if errors.Is(err, context.Canceled) {
		return errno.Others(method+" cancelled", err)
	}

	return errno.RpcUnreachable(fmt.Errorf("%s: %w", method, err))
}
