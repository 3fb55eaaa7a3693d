package types

import (
	"crypto/ecdsa"
	"errors"

	"rect/pkg/codec"
	"rect/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var errKeyRedacted = errors.New("private key is not serializable")

// PrivateKey 是一个不透明的 32 字节 secp256k1 私钥
// 由 CLI 层持有, Signer 在一次签名调用内借用, 不落盘也不打日志
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// NewPrivateKey validates raw as a secp256k1 scalar.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	k, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errno.InvalidValue("<redacted>", "priv", err.Error())
	}
	return &PrivateKey{key: k}, nil
}

// ParsePrivateKey 严格解析 32 字节十六进制私钥, 前缀可选
func ParsePrivateKey(text string) (*PrivateKey, error) {
	b, err := codec.ParseFixedBytes("priv", text, codec.PrivateKeyLength)
	if err != nil {
		// 错误信息里不能带上原始输入
		return nil, errno.InvalidValue("<redacted>", "priv", "invalid private key: expected 32 bytes hex")
	}
	return NewPrivateKey(b)
}

// Address returns the account controlled by the key.
func (k *PrivateKey) Address() common.Address {
	return crypto.PubkeyToAddress(k.key.PublicKey)
}

// ECDSA exposes the key to a signer for the duration of one call.
func (k *PrivateKey) ECDSA() *ecdsa.PrivateKey {
	return k.key
}

func (k *PrivateKey) String() string {
	return "PrivateKey(" + k.Address().Hex() + ")"
}

func (k *PrivateKey) GoString() string {
	return k.String()
}

func (k *PrivateKey) MarshalJSON() ([]byte, error) {
	return nil, errKeyRedacted
}

func (k *PrivateKey) MarshalText() ([]byte, error) {
	return nil, errKeyRedacted
}
