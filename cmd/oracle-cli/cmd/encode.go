package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"signing-oracle/internal/tx"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "构造转账的规范消息",
	Long:  `读取转账参数 JSON，按设备的固定模板生成规范消息，输出消息及其哈希。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, _ := cmd.Flags().GetString("variant")
		paramsFile, _ := cmd.Flags().GetString("params")
		signer, _ := cmd.Flags().GetString("signer")
		path, _ := cmd.Flags().GetString("path")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		v, err := tx.ParseVariant(variant)
		if err != nil {
			return err
		}
		params, err := readParams(paramsFile)
		if err != nil {
			return err
		}
		// 参数文件未给出路径时，依次取 --path 与配置中的默认路径
		if params.SigningPath == "" {
			params.SigningPath = path
		}
		if params.SigningPath == "" {
			params.SigningPath = cfg.Oracle.DefaultPath
		}
		key, err := hex.DecodeString(signer)
		if err != nil {
			return errno.ErrDecoding.WithMessage("signer: " + err.Error())
		}

		msg, err := tx.Encode(v, params, key)
		if err != nil {
			return err
		}
		h := msg.Hash()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, msg.String())
		fmt.Fprintf(out, "hex:       %s\n", crypto_util.HexHash(h))
		fmt.Fprintf(out, "base64url: %s\n", crypto_util.EncodeHash(h))
		return nil
	},
}

// readParams 读取 JSON 格式的转账参数
func readParams(file string) (tx.TransactionParams, error) {
	var p tx.TransactionParams
	data, err := os.ReadFile(file)
	if err != nil {
		return p, fmt.Errorf("读取参数文件失败: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, errno.ErrDecoding.WithMessage("解析参数文件失败: " + err.Error())
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().String("variant", "transfer", "交易类型: transfer, transfer_create, transfer_cross_chain")
	encodeCmd.Flags().String("params", "", "转账参数 JSON 文件")
	encodeCmd.Flags().String("signer", "", "签名者公钥 (hex)")
	encodeCmd.Flags().String("path", "", "派生路径 (默认取配置 oracle.default_path)")

	encodeCmd.MarkFlagRequired("params")
	encodeCmd.MarkFlagRequired("signer")
}
