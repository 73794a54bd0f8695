package cmd

import (
	"fmt"
	"os"

	"signing-oracle/internal/device"

	"github.com/spf13/cobra"
)

var checkFlags attemptFlags

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "验证录制的设备会话",
	Long: `读取设备会话的录制文件 (公钥、签名、回显哈希或 pact_command)，
按 --mode 重放一次签名请求并在本地验证结果。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		transcriptFile, _ := cmd.Flags().GetString("transcript")

		f, err := os.Open(transcriptFile)
		if err != nil {
			return fmt.Errorf("打开录制文件失败: %w", err)
		}
		defer f.Close()
		t, err := device.LoadTranscript(f)
		if err != nil {
			return err
		}

		req, err := checkFlags.request(cfg)
		if err != nil {
			return err
		}
		return runAttempt(cmd.Context(), cfg, device.NewReplaySession(*t), req, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkFlags.register(checkCmd)
	checkCmd.Flags().String("transcript", "", "设备会话录制文件 (JSON)")
	checkCmd.MarkFlagRequired("transcript")
}
