package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"rect/pkg/codec"
	"rect/pkg/errno"
	"rect/pkg/wallet/types"

	ethtypes "github.com/ethereum/go-ethereum/core/types" // Alias to avoid conflict
	"github.com/spf13/cobra"
)

var (
	sendRawHex   string
	sendRawInput string
	sendRawWait  waitFlags
)

var sendRawCmd = &cobra.Command{
	Use:   "send-raw",
	Short: "广播已签名的交易 (Online)",
	Long: `读取已签名的交易 (--raw 十六进制, 或 -i sign 命令输出的 JSON 文件), 并广播到节点。

同一份已签名交易只应广播一次: nonce 过期时节点会拒绝, 本工具不会重试。`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sendRawWait.resolve(cmd)

		// 1. 读取 Signed Tx
		signed, err := loadSigned(sendRawHex, sendRawInput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "正在广播交易 Hash: %s ...\n", signed.TxHash)

		// 2. 连接节点
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		sub := newSubmitter(client, &sendRawWait, cmd.ErrOrStderr())

		// 3. 广播
		if !sendRawWait.wait {
			hash, err := sub.SendSigned(ctx, signed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())
			return nil
		}

		receipt, err := sub.ConfirmSigned(ctx, signed, sendRawWait.timeout)
		if receipt != nil {
			printReceipt(cmd.OutOrStdout(), receipt)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(sendRawCmd)
	sendRawCmd.Flags().StringVar(&sendRawHex, "raw", "", "已签名交易的十六进制 RLP 编码")
	sendRawCmd.Flags().StringVarP(&sendRawInput, "input", "i", "", "已签名的交易文件 (sign 命令的输出)")
	sendRawCmd.MarkFlagsMutuallyExclusive("raw", "input")
	sendRawCmd.MarkFlagsOneRequired("raw", "input")
	sendRawWait.register(sendRawCmd.Flags())
}

// loadSigned 解码原始交易并重新计算哈希; 文件中记录的哈希必须与之一致
func loadSigned(rawHex, file string) (*types.SignedTransaction, error) {
	field := "raw"
	var recorded string
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errno.InvalidValue(file, "input", err.Error())
		}
		var onDisk types.SignedTransaction
		if err := json.Unmarshal(data, &onDisk); err != nil {
			return nil, errno.InvalidValue(file, "input", err.Error())
		}
		rawHex, recorded, field = onDisk.RawTx, onDisk.TxHash, "raw_tx"
	}

	raw, err := codec.ParseHexBytes(field, rawHex)
	if err != nil {
		return nil, err
	}

	// 反序列化 Raw Tx
	tx := new(ethtypes.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errno.InvalidValue(rawHex, field, "not a signed transaction: "+err.Error())
	}
	signed := types.NewSignedTransaction(raw, tx.Hash())

	if recorded != "" && !strings.EqualFold(recorded, signed.TxHash) {
		return nil, errno.InvalidValue(recorded, "tx_hash", "does not match raw_tx ("+signed.TxHash+")")
	}
	return signed, nil
}
