package oracle

import (
	"context"
	"fmt"

	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
)

// Request 按 Mode 描述一次签名尝试，各模式只读取自己需要的字段
type Request struct {
	Mode Mode
	// Path 为空时由 Params.SigningPath 决定 (转账模式)
	Path    string
	Variant tx.Variant
	Params  *tx.TransactionParams
	Message []byte
	Hash    string
	// Expected 只用于 address 模式
	Expected []byte
}

// Begin 根据 req.Mode 调用对应的 Begin* 入口
func (o *Oracle) Begin(ctx context.Context, s device.LegacySession, req Request) (*Attempt, error) {
	switch req.Mode {
	case ModeBlob:
		return o.BeginBlob(ctx, s, req.Path, req.Message)
	case ModeHash:
		return o.BeginHash(ctx, s, req.Path, req.Hash)
	case ModeAddress:
		return o.ShowAddress(ctx, s, req.Path, req.Expected)
	case ModeTransfer, ModeLegacyTransfer:
		if req.Params == nil {
			return nil, &tx.EncodingError{Field: "params", Reason: "missing transaction params"}
		}
		params := *req.Params
		if params.SigningPath == "" {
			params.SigningPath = req.Path
		}
		if req.Mode == ModeLegacyTransfer {
			return o.BeginLegacyTransfer(ctx, s, req.Variant, params)
		}
		return o.BeginTransfer(ctx, s, req.Variant, params)
	}
	return nil, &tx.EncodingError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", req.Mode)}
}

// ParseMode 校验模式名
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBlob, ModeHash, ModeTransfer, ModeLegacyTransfer, ModeAddress:
		return m, nil
	}
	return "", &tx.EncodingError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}
