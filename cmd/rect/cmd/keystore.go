package cmd

import (
	"fmt"

	"rect/pkg/config"
	"rect/pkg/errno"
	"rect/pkg/keystore"

	"github.com/spf13/cobra"
)

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "管理 --keystore 使用的加密私钥文件",
}

var (
	encryptPriv   string
	encryptOutput string
	encryptLight  bool
)

var keystoreEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "用密码加密私钥并保存为 Keystore 文件",
	Long: `私钥通过 --priv 或终端输入 (不回显), 密码通过 RECT_KEYSTORE_PASSWORD 或终端输入。
加密方式: scrypt 派生密钥 + AES-256-GCM。`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 读取私钥
		key, err := readPrivateKey(encryptPriv)
		if err != nil {
			return err
		}

		// 2. 设置密码 (需输入两次)
		password := config.Global.Keystore.Password
		if password == "" {
			p1, ok, err := readSecret("设置 Keystore 密码: ")
			if err != nil {
				return errno.Others("read password", err)
			}
			if !ok {
				return errno.InvalidValue("", "password", "no password: set RECT_KEYSTORE_PASSWORD")
			}
			p2, _, err := readSecret("再次输入密码: ")
			if err != nil {
				return errno.Others("read password", err)
			}
			if p1 != p2 {
				return errno.InvalidValue("<redacted>", "password", "passwords do not match")
			}
			password = p1
		}
		if password == "" {
			return errno.InvalidValue("", "password", "empty password")
		}

		// 3. 加密并保存
		params := keystore.StandardScrypt
		if encryptLight {
			params = keystore.LightScrypt
		}
		encrypted, err := keystore.EncryptKey(key, password, params)
		if err != nil {
			return errno.Others("encrypt key", err)
		}
		if err := encrypted.SaveToFile(encryptOutput); err != nil {
			return errno.Others("save keystore", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "已保存到: %s\n", encryptOutput)
		fmt.Fprintln(cmd.OutOrStdout(), key.Address().Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keystoreCmd)
	keystoreCmd.AddCommand(keystoreEncryptCmd)
	keystoreEncryptCmd.Flags().StringVar(&encryptPriv, "priv", "", "私钥 (32 字节十六进制), 为空时从终端读取")
	keystoreEncryptCmd.Flags().StringVarP(&encryptOutput, "output", "o", "key.json", "Keystore 输出路径")
	keystoreEncryptCmd.Flags().BoolVar(&encryptLight, "light", false, "使用低强度 scrypt 参数 (仅用于测试)")
}
