package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rect/internal/service/signer"
	"rect/pkg/config"
	"rect/pkg/errno"
	"rect/pkg/keystore"
	"rect/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex = "45dc3f2fce22a803e361d4f34257888d3d9a3e63056b43796cbdf8721e0c8e0d"
	testTo     = "0xfFbCB27d3A55698359cb7419275Be1877BDf918c"
)

func TestTxFlagsRequest(t *testing.T) {
	f := txFlags{to: testTo, value: "1000000000000000000", data: "hello", nonce: "0x7", chainID: "1"}
	req, err := f.request(0)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress(testTo), *req.To())
	assert.Equal(t, "1000000000000000000", req.Value().Dec())
	assert.Equal(t, uint64(types.DefaultGasLimit), req.GasLimit().Uint64())
	assert.Equal(t, []byte("hello"), req.Data())
	assert.Nil(t, req.GasPrice())
	nonce, ok := req.Nonce()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), nonce)
	assert.Equal(t, uint64(1), req.ChainID().Uint64())

	req, err = txFlags{value: "0", gas: "21000"}.request(50000)
	require.NoError(t, err)
	assert.Nil(t, req.To())
	assert.Equal(t, uint64(21000), req.GasLimit().Uint64())

	req, err = txFlags{value: "0"}.request(50000)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), req.GasLimit().Uint64())
}

func TestTxFlagsRequestInvalid(t *testing.T) {
	cases := map[string]txFlags{
		"to":        {to: "0x1234", value: "0"},
		"value":     {value: "1.5"},
		"data":      {value: "0", data: "0xzz"},
		"gas":       {value: "0", gas: "0x"},
		"gas-price": {value: "0", gasPrice: "-1"},
		"nonce":     {value: "0", nonce: "0x10000000000000000"},
		"chain-id":  {value: "0", chainID: "abc"},
	}
	for field, f := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.request(0)
			require.Error(t, err)
			assert.ErrorIs(t, err, errno.ErrInvalidValue)
			assert.Contains(t, err.Error(), "for "+field)
		})
	}
}

func signedFixture(t *testing.T) *types.SignedTransaction {
	t.Helper()
	key, err := types.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)
	req, err := txFlags{to: testTo, value: "1", nonce: "0", chainID: "1", gasPrice: "1"}.request(0)
	require.NoError(t, err)
	signed, err := signer.New(nil, nil).Sign(context.Background(), req, key)
	require.NoError(t, err)
	return signed
}

func TestLoadSigned(t *testing.T) {
	signed := signedFixture(t)

	fromHex, err := loadSigned(signed.RawTx, "")
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), fromHex.Hash())

	file := filepath.Join(t.TempDir(), "signed.json")
	data, _ := json.Marshal(signed)
	require.NoError(t, os.WriteFile(file, data, 0o600))

	fromFile, err := loadSigned("", file)
	require.NoError(t, err)
	assert.Equal(t, signed.Raw(), fromFile.Raw())

	// tampered hash
	bad := *signed
	bad.TxHash = common.HexToHash("0x01").Hex()
	data, _ = json.Marshal(&bad)
	require.NoError(t, os.WriteFile(file, data, 0o600))
	_, err = loadSigned("", file)
	assert.ErrorIs(t, err, errno.ErrInvalidValue)

	_, err = loadSigned("0xdeadbeef", "")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
}

func TestLoadKeyFromKeystore(t *testing.T) {
	key, err := types.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)
	encrypted, err := keystore.EncryptKey(key, "pw", keystore.LightScrypt)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, encrypted.SaveToFile(file))

	saved := config.Global.Keystore
	t.Cleanup(func() { config.Global.Keystore = saved })

	config.Global.Keystore.Password = "pw"
	loaded, err := loadKey("", file)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), loaded.Address())

	// keystore.path from config
	config.Global.Keystore.Path = file
	loaded, err = loadKey("", "")
	require.NoError(t, err)
	assert.Equal(t, key.Address(), loaded.Address())

	config.Global.Keystore.Password = "wrong"
	_, err = loadKey("", file)
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
}

func TestLoadKeyRequiresInput(t *testing.T) {
	saved, savedRead := config.Global.Keystore, readSecret
	t.Cleanup(func() { config.Global.Keystore, readSecret = saved, savedRead })
	config.Global.Keystore = config.KeystoreConfig{}
	readSecret = func(string) (string, bool, error) { return "", false, nil }

	_, err := loadKey("", "")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)

	_, err = loadKey("0x1234", "")
	assert.ErrorIs(t, err, errno.ErrInvalidValue)
	assert.NotContains(t, err.Error(), "0x1234", "key material must not be echoed")
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	renderError(&buf, errno.Timeout("0xabc", nil))
	assert.Contains(t, buf.String(), "Error [20004]")
	assert.Contains(t, buf.String(), "tx hash: 0xabc")
}

// chainStub answers sendRawTransaction and returns a receipt with the given status.
func chainStub(t *testing.T, status uint64) *httptest.Server {
	var mu sync.Mutex
	var sent common.Hash

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params []string        `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		mu.Lock()
		defer mu.Unlock()
		switch req.Method {
		case "eth_sendRawTransaction":
			raw, _ := hexutil.Decode(req.Params[0])
			tx := new(ethtypes.Transaction)
			_ = tx.UnmarshalBinary(raw)
			sent = tx.Hash()
			resp["result"] = sent.Hex()
		case "eth_getTransactionReceipt":
			resp["result"] = &ethtypes.Receipt{
				Status:            status,
				CumulativeGasUsed: 21000,
				Logs:              []*ethtypes.Log{},
				TxHash:            sent,
				GasUsed:           21000,
				EffectiveGasPrice: big.NewInt(1_000_000_000),
				BlockHash:         common.HexToHash("0xb10c"),
				BlockNumber:       big.NewInt(1),
			}
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags 恢复默认值, 避免上一次执行留下的 Changed 状态影响下一次
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestFlagConstraintsAreInvalidValue(t *testing.T) {
	chdir(t, t.TempDir())

	cases := map[string][]string{
		"required hash":          {"receipt"},
		"priv and keystore":      {"tx", "--priv", testKeyHex, "--keystore", "key.json"},
		"sign priv and keystore": {"sign", "--priv", testKeyHex, "--keystore", "key.json"},
		"raw or input":           {"send-raw"},
		"raw and input":          {"send-raw", "--raw", "0x01", "-i", "signed.json"},
		"extra argument":         {"receipt", "--hash", "0x01", "extra"},
		"unknown flag":           {"tx", "--bogus"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, errno.ErrInvalidValue)
			assert.Equal(t, 2, errno.ExitCode(err))
		})
	}
}

func TestTxCommandWaitConfirmed(t *testing.T) {
	srv := chainStub(t, ethtypes.ReceiptStatusSuccessful)
	chdir(t, t.TempDir())
	t.Setenv("RECT_RPC_URL", srv.URL)

	out, err := execute(t, "tx",
		"--to", testTo, "--value", "1000000000000000000",
		"--nonce", "0", "--chain-id", "1", "--gas-price", "1000000000",
		"--priv", testKeyHex,
		"--wait", "--timeout", "5s", "--poll-interval", "10ms",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     success")
	assert.Contains(t, out, "Fee:        0.000021 ETH")
}

func TestSendRawCommandReverted(t *testing.T) {
	srv := chainStub(t, ethtypes.ReceiptStatusFailed)
	chdir(t, t.TempDir())
	t.Setenv("RECT_RPC_URL", srv.URL)
	signed := signedFixture(t)

	out, err := execute(t, "send-raw", "--raw", signed.RawTx, "--wait", "--timeout", "5s", "--poll-interval", "10ms")
	require.Error(t, err)
	assert.Equal(t, 4, errno.ExitCode(err))
	hash, ok := errno.TxHash(err)
	require.True(t, ok)
	assert.Equal(t, signed.TxHash, hash)
	assert.Contains(t, out, "Status:     failed")
}
