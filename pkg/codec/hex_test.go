package codec

import (
	"math/big"
	"strings"
	"testing"

	"rect/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripHexPrefix(t *testing.T) {
	assert.Equal(t, "00", StripHexPrefix("0x00"))
	assert.Equal(t, "00", StripHexPrefix("0X00"))
	assert.Equal(t, "", StripHexPrefix("0X"))
	assert.Equal(t, "", StripHexPrefix("0x"))
	assert.Equal(t, "abcd", StripHexPrefix("abcd"))
	assert.Equal(t, "0", StripHexPrefix("0"))
}

func TestParseUint256DecimalMatchesHex(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	inputs := []string{
		"0",
		"1",
		"100",
		"100000",
		"1000000000000000000",
		"340282366920938463463374607431768211456", // 2^128, beyond u128
		max.String(),
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			n, ok := new(big.Int).SetString(s, 10)
			require.True(t, ok)

			dec, err := ParseUint256("value", s)
			require.NoError(t, err)
			hexed, err := ParseUint256("value", "0x"+n.Text(16))
			require.NoError(t, err)
			upper, err := ParseUint256("value", "0X"+strings.ToUpper(n.Text(16)))
			require.NoError(t, err)

			assert.Equal(t, dec, hexed)
			assert.Equal(t, dec, upper)
			assert.Equal(t, 0, dec.ToBig().Cmp(n))
		})
	}
}

func TestParseUint256LeadingZeros(t *testing.T) {
	v, err := ParseUint256("gas", "0x0100")
	require.NoError(t, err)
	assert.Equal(t, uint64(256), v.Uint64())

	v, err = ParseUint256("gas", "007")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.Uint64())
}

func TestParseUint256Invalid(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	inputs := []string{
		"",
		"0x",
		"0X",
		"-1",
		"+1",
		"1.5",
		"12a",
		"0xzz",
		" 1",
		tooBig.String(),
		"0x" + tooBig.Text(16),
	}

	for _, s := range inputs {
		_, err := ParseUint256("value", s)
		assert.ErrorIs(t, err, errno.ErrInvalidValue, "input %q", s)
	}
}

func TestParseUint64(t *testing.T) {
	v, err := ParseUint64("nonce", "0x2a")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = ParseUint64("nonce", "18446744073709551616")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
}

func TestParseFixedBytesPrefixIdempotent(t *testing.T) {
	bodies := []struct {
		body   string
		length int
	}{
		{"90b1498fcac1911f91cd650dd4091b36d32e728eb8c5be611af35e3d3e04dd7d", 32},
		{"AB4b65661c2E6061321ab68Dd2741132F41D3d19", 20},
	}

	for _, tt := range bodies {
		bare, err := ParseFixedBytes("f", tt.body, tt.length)
		require.NoError(t, err)
		lower, err := ParseFixedBytes("f", "0x"+tt.body, tt.length)
		require.NoError(t, err)
		upper, err := ParseFixedBytes("f", "0X"+tt.body, tt.length)
		require.NoError(t, err)

		assert.Equal(t, bare, lower)
		assert.Equal(t, bare, upper)
		assert.Len(t, bare, tt.length)
	}
}

func TestParseFixedBytesInvalid(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		length int
	}{
		{"bare prefix", "0x", 32},
		{"bare upper prefix", "0X", 20},
		{"too short", "0xAB4b65661c2E6061321ab68Dd2741132F41D3d", 20},
		{"too long", "0xAB4b65661c2E6061321ab68Dd2741132F41D3d1900", 20},
		{"odd length", "0xabc", 20},
		{"non hex", "0xAB4b65661c2E6061321ab68Dd2741132F41D3dzz", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixedBytes("to", tt.input, tt.length)
			require.Error(t, err)
			assert.ErrorIs(t, err, errno.ErrInvalidValue)
		})
	}
}

func TestParsePayload(t *testing.T) {
	b, err := ParsePayload("data", "0xdeadBEEF")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	b, err = ParsePayload("data", "0x")
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = ParsePayload("data", "hello world")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), b)

	_, err = ParsePayload("data", "0xnothex")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
}

func TestParseAddressAndHash(t *testing.T) {
	addr, err := ParseAddress("to", "0xfFbCB27d3A55698359cb7419275Be1877BDf918c")
	require.NoError(t, err)
	assert.Equal(t, "0xfFbCB27d3A55698359cb7419275Be1877BDf918c", addr.Hex())

	_, err = ParseAddress("to", "fFbCB27d3A55698359cb7419275Be1877BDf91")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)

	_, err = ParseHash("hash", "0xfFbCB27d3A55698359cb7419275Be1877BDf918c")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
}

func TestFormatEther(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, "1", FormatEther(oneEther))
	assert.Equal(t, "1.5", FormatEther(new(big.Int).Add(oneEther, new(big.Int).Div(oneEther, big.NewInt(2)))))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "0.00042", FormatEther(Fee(21000, big.NewInt(20_000_000_000))))
}

func TestParseHexBytes(t *testing.T) {
	b, err := ParseHexBytes("raw", "0xf86b01")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xf8, 0x6b, 0x01}, b)

	b, err = ParseHexBytes("raw", "F86B01")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xf8, 0x6b, 0x01}, b)

	for _, in := range []string{"", "0x", "0xabc", "0xzz"} {
		_, err := ParseHexBytes("raw", in)
		assert.ErrorIs(t, err, errno.ErrInvalidValue, in)
	}
}
