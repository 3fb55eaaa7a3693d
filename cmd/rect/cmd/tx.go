package cmd

import (
	"fmt"

	"rect/pkg/config"

	"github.com/spf13/cobra"
)

var (
	txOpts   txFlags
	txWait   waitFlags
	txDryRun bool
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "构造, 签名并广播一笔交易 (Online)",
	Long: `根据参数构造交易, 使用私钥签名后通过 eth_sendRawTransaction 广播。

未指定的 nonce / chain id / gas price 会从节点获取。
加上 --wait 后会轮询回执, 直到交易确认, 执行失败或超时:
  退出码 0 成功, 4 交易执行失败 (已上链), 5 等待超时 (交易可能仍在 pending)。`,
	Example: `  rect tx --to 0xfFbCB27d3A55698359cb7419275Be1877BDf918c --value 1000000000000000000 --priv $KEY
  rect tx --to 0x... --value 0x0de0b6b3a7640000 --keystore key.json --wait --timeout 2m`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		progress := cmd.ErrOrStderr()

		// 1. 解析参数 (在任何网络请求之前)
		req, err := txOpts.request(config.Global.Tx.GasLimit)
		if err != nil {
			return err
		}
		txWait.resolve(cmd)

		// 2. 加载私钥
		key, err := loadKey(txOpts.priv, txOpts.keystore)
		if err != nil {
			return err
		}
		printRequest(progress, key.Address(), req)
		if txDryRun {
			return nil
		}

		// 3. 连接节点
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		sub := newSubmitter(client, &txWait, progress)

		// 4. 广播
		if !txWait.wait {
			hash, err := sub.Send(ctx, req, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hash.Hex())
			return nil
		}

		// 5. 广播并等待确认
		receipt, err := sub.SendAndConfirm(ctx, req, key, txWait.timeout)
		if receipt != nil {
			printReceipt(out, receipt)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	txOpts.register(txCmd.Flags())
	txWait.register(txCmd.Flags())
	txCmd.Flags().BoolVar(&txDryRun, "dry-run", false, "只解析参数并显示交易, 不连接节点")
	txCmd.MarkFlagsMutuallyExclusive("priv", "keystore")
}
