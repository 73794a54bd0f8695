package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash [message]",
	Short: "计算消息的 blake2b-256 哈希",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		isHex, _ := cmd.Flags().GetBool("hex")

		var message []byte
		switch {
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("读取消息文件失败: %w", err)
			}
			message = data
		case len(args) == 1:
			message = []byte(args[0])
		default:
			return errors.New("需要 message 参数或 --file")
		}
		if isHex {
			decoded, err := hex.DecodeString(string(message))
			if err != nil {
				return errno.ErrDecoding.WithMessage("message: " + err.Error())
			}
			message = decoded
		}

		h := crypto_util.Blake2b256(message)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "length:    %d\n", len(message))
		fmt.Fprintf(out, "hex:       %s\n", crypto_util.HexHash(h))
		fmt.Fprintf(out, "base64url: %s\n", crypto_util.EncodeHash(h))
		return nil
	},
}

var decodeHashCmd = &cobra.Command{
	Use:   "decode-hash <base64url>",
	Short: "把设备回显的 URL-safe base64 哈希转成 hex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := crypto_util.DecodeHash(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), crypto_util.HexHash(h))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(decodeHashCmd)

	hashCmd.Flags().StringP("file", "f", "", "从文件读取消息")
	hashCmd.Flags().Bool("hex", false, "消息为 hex 编码")
}
