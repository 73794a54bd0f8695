package cmd

import (
	"encoding/hex"
	"fmt"

	"signing-oracle/internal/oracle"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "验证 Ed25519 签名",
	Long:  `验证 signature 是否为 pubkey 对 hash 的签名。hash 可以是 hex 或 base64。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigHex, _ := cmd.Flags().GetString("signature")
		hashText, _ := cmd.Flags().GetString("hash")
		pubHex, _ := cmd.Flags().GetString("pubkey")

		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			return errno.ErrDecoding.WithMessage("signature: " + err.Error())
		}
		pub, err := hex.DecodeString(pubHex)
		if err != nil {
			return errno.ErrDecoding.WithMessage("pubkey: " + err.Error())
		}
		digest, err := crypto_util.ParseDigest(hashText)
		if err != nil {
			return err
		}

		ok, err := crypto_util.VerifySignature(sig, digest[:], pub)
		if err != nil {
			return err
		}
		if !ok {
			return oracle.ErrSignatureInvalid
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("signature", "", "签名 (hex)")
	verifyCmd.Flags().String("hash", "", "被签名的哈希 (hex 或 base64)")
	verifyCmd.Flags().String("pubkey", "", "公钥 (hex)")

	verifyCmd.MarkFlagRequired("signature")
	verifyCmd.MarkFlagRequired("hash")
	verifyCmd.MarkFlagRequired("pubkey")
}
