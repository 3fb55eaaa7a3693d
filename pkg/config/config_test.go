package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rect/pkg/errno"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	require.NoError(t, Init(""))

	assert.Equal(t, "development", Global.App.Env)
	assert.Equal(t, "http://127.0.0.1:8545", Global.RPC.URL)
	assert.Equal(t, 5*time.Second, Global.RPC.DialTimeout)
	assert.Equal(t, 30*time.Second, Global.RPC.CallTimeout)
	assert.Equal(t, uint64(100000), Global.Tx.GasLimit)
	assert.Equal(t, 60*time.Second, Global.Confirm.Timeout)
	assert.Equal(t, time.Second, Global.Confirm.PollInterval)
	assert.Equal(t, uint64(0), Global.Confirm.Confirmations)
	assert.Empty(t, Global.Metrics.Pushgateway)
}

func TestInitFileAndEnv(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	file := filepath.Join(dir, "rect.yaml")
	content := `
app:
  env: production
rpc:
  url: http://node.internal:8545
  call_timeout: 3s
confirm:
  timeout: 2m
  poll_interval: 250ms
  confirmations: 2
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("RECT_RPC_URL", "http://override:8545")

	require.NoError(t, Init(file))

	assert.Equal(t, "production", Global.App.Env)
	assert.Equal(t, "http://override:8545", Global.RPC.URL)
	assert.Equal(t, 3*time.Second, Global.RPC.CallTimeout)
	assert.Equal(t, 2*time.Minute, Global.Confirm.Timeout)
	assert.Equal(t, 250*time.Millisecond, Global.Confirm.PollInterval)
	assert.Equal(t, uint64(2), Global.Confirm.Confirmations)
	assert.Equal(t, file, Used())
}

func TestInitExplicitFileMissing(t *testing.T) {
	viper.Reset()
	err := Init(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RECT_APP_ENV":               "staging",
		"RECT_RPC_URL":               "not a url",
		"RECT_CONFIRM_POLL_INTERVAL": "0s",
		"RECT_METRICS_PUSHGATEWAY":   "::bad",
	}
	for env, value := range cases {
		t.Run(env, func(t *testing.T) {
			viper.Reset()
			chdir(t, t.TempDir())
			t.Setenv(env, value)

			err := Init("")
			require.Error(t, err)
			assert.ErrorIs(t, err, errno.ErrInvalidValue)
		})
	}
}
