package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"rect/internal/service/signer"
	"rect/pkg/config"
	"rect/pkg/errno"
	"rect/pkg/logger"
	"rect/pkg/wallet/types"

	"github.com/spf13/cobra"
)

var (
	signOpts   txFlags
	signOutput string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "签名交易但不广播 (Offline Signing)",
	Long: `根据参数构造并签名交易, 输出已签名的交易 (Raw Tx) JSON, 之后可用 send-raw 广播。

同时给出 --nonce, --chain-id 和 --gas-price 时完全离线, 否则会向节点查询缺失的值。`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 1. 解析参数
		req, err := signOpts.request(config.Global.Tx.GasLimit)
		if err != nil {
			return err
		}

		// 2. 加载私钥
		key, err := loadKey(signOpts.priv, signOpts.keystore)
		if err != nil {
			return err
		}
		printRequest(cmd.ErrOrStderr(), key.Address(), req)

		// 3. 签名, 只有缺少 nonce / chain id / gas price 时才连接节点
		var s *signer.Signer
		if needsNode(req) {
			client, err := dialNode(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			s = signer.New(client, logger.Named("rect"))
		} else {
			s = signer.New(nil, logger.Named("rect"))
		}

		signed, err := s.Sign(ctx, req, key)
		if err != nil {
			return err
		}

		// 4. 输出结果
		return writeSigned(cmd, signed)
	},
}

func init() {
	rootCmd.AddCommand(signCmd)
	signOpts.register(signCmd.Flags())
	signCmd.Flags().StringVarP(&signOutput, "output", "o", "signed.json", "签名后的输出文件路径, - 表示 stdout")
	signCmd.MarkFlagsMutuallyExclusive("priv", "keystore")
}

func needsNode(req *types.TransactionRequest) bool {
	_, hasNonce := req.Nonce()
	return !hasNonce || req.ChainID() == nil || req.GasPrice() == nil
}

func writeSigned(cmd *cobra.Command, signed *types.SignedTransaction) error {
	data, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return errno.Others("encode signed transaction", err)
	}

	if signOutput == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(signOutput, data, 0644); err != nil {
		return errno.Others("save signed transaction", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "已保存到: %s\n", signOutput)
	fmt.Fprintln(cmd.OutOrStdout(), signed.TxHash)
	return nil
}
