package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rect/pkg/config"
	"rect/pkg/errno"
	"rect/pkg/logger"
	"rect/pkg/monitor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string

	// 每次运行独立的 registry, 只推送本次运行的指标
	registry = prometheus.NewRegistry()
	metrics  = monitor.NewSubmitMetrics(registry)
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "rect",
	Short: "以太坊交易构造与提交工具",
	Long: `rect 构造并签名一笔以太坊交易, 通过 JSON-RPC 节点广播,
并可选地轮询回执直到交易被确认或超时。

结果输出到 stdout, 日志和进度输出到 stderr。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 0. 必填 / 互斥参数. cobra 在 PreRun 之后才检查, 这里提前检查以归为 InvalidValue
		if err := validateFlags(cmd); err != nil {
			return err
		}
		// 1. 配置 (文件 < 环境变量 < 命令行参数)
		if err := config.Init(cfgFile); err != nil {
			if errors.Is(err, errno.ErrInvalidValue) {
				return err
			}
			return errno.Others("load config", err)
		}
		// 2. 日志
		if err := logger.Init(config.Global.App.Env, config.Global.Log.Level); err != nil {
			return errno.InvalidValue(config.Global.Log.Level, "log-level", err.Error())
		}
		if used := config.Used(); used != "" {
			logger.Debug("config loaded", zap.String("file", used))
		}
		return nil
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	pushMetrics()
	logger.Sync()

	if err != nil {
		renderError(os.Stderr, err)
		os.Exit(errno.ExitCode(err))
	}
}

func init() {
	// 全局标志 (Global Flags)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "配置文件 (默认查找 ./rect.yaml, ./config/rect.yaml, $HOME/.rect/rect.yaml)")
	pf.String("rpc", "", "JSON-RPC 节点地址 (默认 http://127.0.0.1:8545)")
	pf.String("env", "", "运行环境: development | production")
	pf.String("log-level", "", "日志级别: debug | info | warn | error")

	_ = viper.BindPFlag("rpc.url", pf.Lookup("rpc"))
	_ = viper.BindPFlag("app.env", pf.Lookup("env"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return invalidFlags(err)
	})
}

func invalidFlags(err error) error {
	return fmt.Errorf("%w: %v", errno.ErrInvalidValue, err)
}

func validateFlags(cmd *cobra.Command) error {
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return invalidFlags(err)
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return invalidFlags(err)
	}
	return nil
}

// noArgs 同 cobra.NoArgs, 但多余的位置参数归为 InvalidValue
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return invalidFlags(err)
	}
	return nil
}

// renderError 打印错误, 若已知交易哈希则一并给出, 方便在链上继续追查
func renderError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error [%d]: %s\n", errno.Kind(err).Code, err.Error())
	if hash, ok := errno.TxHash(err); ok {
		fmt.Fprintf(w, "tx hash: %s\n", hash)
	}
}

func pushMetrics() {
	url := config.Global.Metrics.Pushgateway
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := monitor.Push(ctx, url, config.Global.Metrics.Job, registry); err != nil {
		logger.Warn("push metrics failed", zap.String("pushgateway", url), zap.Error(err))
	}
}
