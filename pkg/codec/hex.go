// Package codec 负责把用户输入的十进制 / 十六进制字符串解析成定长整数与字节。
// 所有失败都以 errno.InvalidValue 返回, 在发起任何网络请求之前暴露。
package codec

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"rect/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	AddressLength    = 20
	PrivateKeyLength = 32
	HashLength       = 32
)

// HasHexPrefix reports whether s starts with 0x or 0X.
func HasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// StripHexPrefix 去掉 `0x` 或 `0X` 前缀, "0x" 本身得到空串
func StripHexPrefix(s string) string {
	if HasHexPrefix(s) {
		return s[2:]
	}
	return s
}

// ParseUint256 接受十进制 (100) 或十六进制 (0x64) 字符串
// 空串, 单独的 "0x", 非法字符以及超过 256 位都视为 InvalidValue
func ParseUint256(field, text string) (*uint256.Int, error) {
	body, base := text, 10
	if HasHexPrefix(text) {
		body, base = text[2:], 16
	}
	if body == "" {
		return nil, errno.InvalidValue(text, field, "empty number")
	}
	for i := 0; i < len(body); i++ {
		if !isDigit(body[i], base) {
			return nil, errno.InvalidValue(text, field, fmt.Sprintf("invalid character %q for base %d", body[i], base))
		}
	}

	n, ok := new(big.Int).SetString(body, base)
	if !ok {
		return nil, errno.InvalidValue(text, field, "invalid number")
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return nil, errno.InvalidValue(text, field, "number overflows 256 bits")
	}
	return v, nil
}

// ParseUint64 same grammar as ParseUint256, limited to 64 bits (nonce).
func ParseUint64(field, text string) (uint64, error) {
	v, err := ParseUint256(field, text)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errno.InvalidValue(text, field, "number overflows 64 bits")
	}
	return v.Uint64(), nil
}

// ParseFixedBytes 解码固定长度的十六进制字符串, 前缀可选
// 长度按去掉前缀后的字节数计算
func ParseFixedBytes(field, text string, length int) ([]byte, error) {
	b, err := hex.DecodeString(StripHexPrefix(text))
	if err != nil {
		return nil, errno.InvalidValue(text, field, fmt.Sprintf("invalid hex string: %v", err))
	}
	if len(b) != length {
		return nil, errno.InvalidValue(text, field, fmt.Sprintf("invalid hex string: bytes length isn't %d", length))
	}
	return b, nil
}

// ParseHexBytes decodes a non-empty hex string of any length, prefix optional.
func ParseHexBytes(field, text string) ([]byte, error) {
	body := StripHexPrefix(text)
	if body == "" {
		return nil, errno.InvalidValue(text, field, "empty hex string")
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return nil, errno.InvalidValue(text, field, fmt.Sprintf("invalid hex string: %v", err))
	}
	return b, nil
}

// ParsePayload 以 0x 开头时按十六进制解码, 否则直接使用原始字符串的字节
func ParsePayload(field, text string) ([]byte, error) {
	if !HasHexPrefix(text) {
		return []byte(text), nil
	}
	b, err := hex.DecodeString(text[2:])
	if err != nil {
		return nil, errno.InvalidValue(fmt.Sprintf("hex string(%q)", text), field, "Invalid hex string")
	}
	return b, nil
}

func ParseAddress(field, text string) (common.Address, error) {
	b, err := ParseFixedBytes(field, text, AddressLength)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

func ParseHash(field, text string) (common.Hash, error) {
	b, err := ParseFixedBytes(field, text, HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	}
	return false
}
