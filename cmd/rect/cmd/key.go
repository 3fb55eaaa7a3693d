package cmd

import (
	"fmt"
	"os"
	"strings"

	"rect/pkg/config"
	"rect/pkg/errno"
	"rect/pkg/keystore"
	"rect/pkg/wallet/types"

	"golang.org/x/term"
)

// readSecret 从终端读取输入且不回显; stdin 不是终端时返回 false
var readSecret = func(prompt string) (string, bool, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", true, err
	}
	return strings.TrimSpace(string(b)), true, nil
}

// loadKey 按优先级获取私钥: --priv, --keystore (或配置 keystore.path), 终端输入
// 私钥只在内存中保存, 不写日志
func loadKey(priv, keystorePath string) (*types.PrivateKey, error) {
	if priv != "" {
		return readPrivateKey(priv)
	}

	if keystorePath == "" {
		keystorePath = config.Global.Keystore.Path
	}
	if keystorePath != "" {
		return loadKeystore(keystorePath)
	}

	return readPrivateKey("")
}

// readPrivateKey 解析 priv, 为空时从终端读取
func readPrivateKey(priv string) (*types.PrivateKey, error) {
	if priv != "" {
		return types.ParsePrivateKey(priv)
	}
	text, ok, err := readSecret("请输入私钥 (hex): ")
	if err != nil {
		return nil, errno.Others("read private key", err)
	}
	if !ok {
		return nil, errno.InvalidValue("", "priv", "a private key is required: use --priv or --keystore")
	}
	return types.ParsePrivateKey(text)
}

func loadKeystore(path string) (*types.PrivateKey, error) {
	// 1. 加载 Keystore
	encrypted, err := keystore.LoadFromFile(path)
	if err != nil {
		return nil, errno.InvalidValue(path, "keystore", err.Error())
	}

	// 2. 密码: 环境变量 RECT_KEYSTORE_PASSWORD 优先, 否则终端输入
	password := config.Global.Keystore.Password
	if password == "" {
		p, ok, err := readSecret("请输入 Keystore 密码: ")
		if err != nil {
			return nil, errno.Others("read password", err)
		}
		if !ok {
			return nil, errno.InvalidValue(path, "keystore", "no password: set RECT_KEYSTORE_PASSWORD")
		}
		password = p
	}

	// 3. 解密
	key, err := keystore.DecryptKey(encrypted, password)
	if err != nil {
		return nil, errno.InvalidValue(path, "keystore", err.Error())
	}
	return key, nil
}
