package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"

	"signing-oracle/internal/device"
	"signing-oracle/internal/oracle"
	"signing-oracle/internal/store"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/config"
	"signing-oracle/pkg/errno"
	"signing-oracle/pkg/logger"

	"github.com/spf13/cobra"
)

// attemptFlags 是 check 与 simulate 共用的请求参数
type attemptFlags struct {
	mode     string
	variant  string
	params   string
	message  string
	hash     string
	path     string
	expected string
}

func (f *attemptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "transfer", "模式: blob, hash, transfer, legacy_transfer, address")
	cmd.Flags().StringVar(&f.variant, "variant", "transfer", "交易类型 (transfer 模式)")
	cmd.Flags().StringVar(&f.params, "params", "", "转账参数 JSON 文件 (transfer 模式)")
	cmd.Flags().StringVar(&f.message, "message", "", "待签名消息 (blob 模式)")
	cmd.Flags().StringVar(&f.hash, "hash", "", "待签名摘要, hex 或 base64 (hash 模式)")
	cmd.Flags().StringVar(&f.path, "path", "", "派生路径，默认取配置 oracle.default_path")
	cmd.Flags().StringVar(&f.expected, "expected-pubkey", "", "期望的公钥 hex (address 模式)")
}

func (f *attemptFlags) request(cfg *config.Config) (oracle.Request, error) {
	mode, err := oracle.ParseMode(f.mode)
	if err != nil {
		return oracle.Request{}, err
	}
	req := oracle.Request{
		Mode:    mode,
		Path:    f.path,
		Message: []byte(f.message),
		Hash:    f.hash,
	}
	if req.Path == "" {
		req.Path = cfg.Oracle.DefaultPath
	}
	if f.expected != "" {
		if req.Expected, err = hex.DecodeString(f.expected); err != nil {
			return oracle.Request{}, errno.ErrDecoding.WithMessage("expected-pubkey: " + err.Error())
		}
	}

	if mode == oracle.ModeTransfer || mode == oracle.ModeLegacyTransfer {
		if req.Variant, err = tx.ParseVariant(f.variant); err != nil {
			return oracle.Request{}, err
		}
		if f.params == "" {
			return oracle.Request{}, errno.ErrBind.WithMessage("transfer 模式需要 --params")
		}
		params, err := readParams(f.params)
		if err != nil {
			return oracle.Request{}, err
		}
		req.Params = &params
	}
	return req, nil
}

// runAttempt 发出请求、等待结果并以 JSON 输出记录。
// 验证未通过时返回结果中的错误。
func runAttempt(ctx context.Context, cfg *config.Config, s device.LegacySession, req oracle.Request, out io.Writer) error {
	if cfg.Oracle.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Oracle.AwaitTimeout)
		defer cancel()
	}

	o := oracle.New(logger.Named("oracle"))
	a, err := o.Begin(ctx, s, req)
	if err != nil {
		return err
	}
	outcome := a.Await(ctx)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(store.NewRecord(a, outcome)); err != nil {
		return err
	}
	if !outcome.Verified() {
		return outcome.Err
	}
	return nil
}
