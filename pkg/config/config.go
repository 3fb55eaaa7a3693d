package config

import (
	"errors"
	"strings"
	"time"

	"rect/pkg/validator"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Tx       TxConfig       `mapstructure:"tx"`
	Confirm  ConfirmConfig  `mapstructure:"confirm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Keystore KeystoreConfig `mapstructure:"keystore"`
}

type AppConfig struct {
	Env string `mapstructure:"env" validate:"oneof=development production"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
}

type RPCConfig struct {
	URL         string        `mapstructure:"url" validate:"required,url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gt=0"`
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"gt=0"`
}

type TxConfig struct {
	GasLimit uint64 `mapstructure:"gas_limit" validate:"gt=0"`
}

type ConfirmConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	PollInterval  time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Confirmations uint64        `mapstructure:"confirmations"`
}

// MetricsConfig 为空的 Pushgateway 表示不推送
type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway" validate:"omitempty,url"`
	Job         string `mapstructure:"job" validate:"required"`
}

type KeystoreConfig struct {
	Path     string `mapstructure:"path"`
	Password string `mapstructure:"password"` // 通常通过环境变量 RECT_KEYSTORE_PASSWORD 传入
}

var Global Config

// Init loads configuration into Global. file may be empty, in which case
// rect.yaml is searched in the working directory, ./config and $HOME/.rect.
// A missing config file is not an error.
func Init(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("rect") // name of config file (without extension)
		viper.SetConfigType("yaml") // REQUIRED if the config file does not have the extension in the name
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/.rect")
	}

	// 环境变量设置: RECT_RPC_URL, RECT_CONFIRM_TIMEOUT ...
	viper.SetEnvPrefix("rect")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		return err
	}
	return validator.Struct(&Global)
}

// Used reports the config file that was read, if any.
func Used() string {
	return viper.ConfigFileUsed()
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("log.level", "info")

	viper.SetDefault("rpc.url", "http://127.0.0.1:8545")
	viper.SetDefault("rpc.dial_timeout", 5*time.Second)
	viper.SetDefault("rpc.call_timeout", 30*time.Second)

	viper.SetDefault("tx.gas_limit", 100000)

	viper.SetDefault("confirm.timeout", 60*time.Second)
	viper.SetDefault("confirm.poll_interval", time.Second)
	viper.SetDefault("confirm.confirmations", 0)

	viper.SetDefault("metrics.pushgateway", "")
	viper.SetDefault("metrics.job", "rect")

	viper.SetDefault("keystore.path", "")
	viper.SetDefault("keystore.password", "")
}
