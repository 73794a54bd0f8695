package cmd

import (
	"context"
	"fmt"

	"signing-oracle/internal/device/devicetest"

	"github.com/spf13/cobra"
)

var simulateFlags attemptFlags

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "在内存模拟设备上完成一次签名并验证",
	Long: `使用配置中的助记词 (device.mnemonic) 构造模拟设备，
自动批准 (或 --reject 拒绝) 设备上的请求，然后验证返回的签名。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reject, _ := cmd.Flags().GetBool("reject")
		blind := cfg.Device.BlindSigning
		if cmd.Flags().Changed("blind-signing") {
			blind, _ = cmd.Flags().GetBool("blind-signing")
		}

		d, err := devicetest.New(devicetest.Options{
			Mnemonic:     cfg.Device.Mnemonic,
			BlindSigning: blind,
		})
		if err != nil {
			return err
		}
		req, err := simulateFlags.request(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			for {
				r, err := d.NextReview(ctx)
				if err != nil {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[device] %s %s: %s\n", r.Kind, r.Path, r.Shown)
				if reject {
					r.Reject()
				} else {
					r.Approve()
				}
			}
		}()

		return runAttempt(ctx, cfg, d, req, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateFlags.register(simulateCmd)
	simulateCmd.Flags().Bool("reject", false, "在设备上拒绝签名请求")
	simulateCmd.Flags().Bool("blind-signing", false, "开启 expert 模式 (覆盖 device.blind_signing)")
}
