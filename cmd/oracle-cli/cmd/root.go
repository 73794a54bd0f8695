package cmd

import (
	"fmt"
	"os"

	"signing-oracle/pkg/config"
	"signing-oracle/pkg/errno"
	"signing-oracle/pkg/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "oracle-cli",
	Short: "Kadena 硬件签名验证工具",
	Long: `构造 Kadena 转账的规范消息、计算 blake2b-256 哈希，
并验证设备 (录制的会话或内存模拟设备) 返回的 Ed25519 签名。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令；失败时按错误码输出并以 1 退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code, msg := errno.Decode(err)
		fmt.Fprintf(os.Stderr, "error %d: %s\n", code, msg)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件 (默认 ./config.yaml)")
}

// loadConfig 读取配置并初始化 logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
