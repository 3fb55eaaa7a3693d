package cmd

import (
	"time"

	"rect/pkg/codec"
	"rect/pkg/config"
	"rect/pkg/wallet/types"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// txFlags 收集构造一笔交易所需的全部参数, 每个字段独立解析
type txFlags struct {
	to       string
	value    string
	data     string
	gas      string
	gasPrice string
	nonce    string
	chainID  string

	priv     string
	keystore string
}

func (f *txFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.to, "to", "", "接收地址 (20 字节十六进制), 为空表示创建合约")
	fs.StringVar(&f.value, "value", "0", "转账金额 (wei), 十进制或 0x 十六进制")
	fs.StringVar(&f.data, "data", "", "交易数据, 0x 开头按十六进制解码, 否则使用原始字符串")
	fs.StringVar(&f.gas, "gas", "", "gas limit (默认取配置 tx.gas_limit)")
	fs.StringVar(&f.gasPrice, "gas-price", "", "gas price (wei), 为空时使用节点建议值")
	fs.StringVar(&f.nonce, "nonce", "", "nonce, 为空时从节点获取 (pending)")
	fs.StringVar(&f.chainID, "chain-id", "", "chain id, 为空时从节点获取")

	fs.StringVar(&f.priv, "priv", "", "私钥 (32 字节十六进制)")
	fs.StringVar(&f.keystore, "keystore", "", "Keystore 文件路径 (默认取配置 keystore.path)")
}

// request 把字符串参数解析为 TransactionRequest, 任何非法输入都返回 InvalidValue
func (f txFlags) request(defaultGas uint64) (*types.TransactionRequest, error) {
	var opts []types.Option

	if f.to != "" {
		to, err := codec.ParseAddress("to", f.to)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithTo(to))
	}

	value, err := codec.ParseUint256("value", f.value)
	if err != nil {
		return nil, err
	}
	opts = append(opts, types.WithValue(value))

	data, err := codec.ParsePayload("data", f.data)
	if err != nil {
		return nil, err
	}
	opts = append(opts, types.WithData(data))

	if defaultGas == 0 {
		defaultGas = types.DefaultGasLimit
	}
	gas := uint256.NewInt(defaultGas)
	if f.gas != "" {
		if gas, err = codec.ParseUint256("gas", f.gas); err != nil {
			return nil, err
		}
	}
	opts = append(opts, types.WithGasLimit(gas))

	if f.gasPrice != "" {
		price, err := codec.ParseUint256("gas-price", f.gasPrice)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithGasPrice(price))
	}

	if f.nonce != "" {
		nonce, err := codec.ParseUint64("nonce", f.nonce)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithNonce(nonce))
	}

	if f.chainID != "" {
		id, err := codec.ParseUint256("chain-id", f.chainID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithChainID(id))
	}

	return types.NewTransactionRequest(opts...), nil
}

// waitFlags 控制 --wait 确认流程, 未显式设置时取配置文件中的值
type waitFlags struct {
	wait          bool
	timeout       time.Duration
	pollInterval  time.Duration
	confirmations uint64
}

func (w *waitFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&w.wait, "wait", false, "广播后轮询回执直到确认或超时")
	fs.DurationVar(&w.timeout, "timeout", 0, "确认总时限 (默认取配置 confirm.timeout)")
	fs.DurationVar(&w.pollInterval, "poll-interval", 0, "回执轮询间隔 (默认取配置 confirm.poll_interval)")
	fs.Uint64Var(&w.confirmations, "confirmations", 0, "打包区块之上还需要的区块数 (默认取配置 confirm.confirmations)")
}

func (w *waitFlags) resolve(cmd *cobra.Command) {
	fs := cmd.Flags()
	if !fs.Changed("timeout") {
		w.timeout = config.Global.Confirm.Timeout
	}
	if !fs.Changed("poll-interval") {
		w.pollInterval = config.Global.Confirm.PollInterval
	}
	if !fs.Changed("confirmations") {
		w.confirmations = config.Global.Confirm.Confirmations
	}
}
