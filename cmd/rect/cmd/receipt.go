package cmd

import (
	"fmt"

	"rect/pkg/codec"

	"github.com/spf13/cobra"
)

var receiptHash string

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "查询交易回执",
	Long:  `调用一次 eth_getTransactionReceipt. 交易尚未打包时输出 pending, 退出码为 0。`,
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := codec.ParseHash("hash", receiptHash)
		if err != nil {
			return err
		}

		client, err := dialNode(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		receipt, err := client.GetReceipt(cmd.Context(), hash)
		if err != nil {
			return err
		}
		if receipt == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "TxHash:     %s\nStatus:     pending\n", hash.Hex())
			return nil
		}
		printReceipt(cmd.OutOrStdout(), receipt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(receiptCmd)
	receiptCmd.Flags().StringVar(&receiptHash, "hash", "", "交易哈希 (32 字节十六进制)")
	_ = receiptCmd.MarkFlagRequired("hash")
}
