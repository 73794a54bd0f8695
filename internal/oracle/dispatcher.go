package oracle

import (
	"context"
	"fmt"

	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/crypto_util"
)

// structuredCall 把交易类型映射到对应的结构化签名操作
type structuredCall struct {
	ctx     context.Context
	session device.Session
	params  tx.TransactionParams

	pending *device.Pending[device.TransferResponse]
}

func (c *structuredCall) VisitTransfer() (err error) {
	c.pending, err = c.session.SignTransferTx(c.ctx, c.params.SigningPath, c.params)
	return err
}

func (c *structuredCall) VisitTransferCreate() (err error) {
	c.pending, err = c.session.SignTransferCreateTx(c.ctx, c.params.SigningPath, c.params)
	return err
}

func (c *structuredCall) VisitTransferCrossChain() (err error) {
	if c.params.RecipientChainID == nil {
		return missingRecipientChain()
	}
	c.pending, err = c.session.SignTransferCrossChainTx(c.ctx, c.params.SigningPath, c.params)
	return err
}

// Dispatch 对结构化转账发出签名请求，不等待结果。
// 跨链转账缺少 recipient_chainId 时在接触设备之前失败。
func Dispatch(ctx context.Context, v tx.Variant, params tx.TransactionParams, session device.Session) (*device.Pending[device.TransferResponse], error) {
	if v == nil {
		return nil, &tx.EncodingError{Field: "variant", Reason: "missing transaction type"}
	}
	call := &structuredCall{ctx: ctx, session: session, params: params}
	if err := v.Accept(call); err != nil {
		return nil, err
	}
	return call.pending, nil
}

type legacyCall struct {
	ctx     context.Context
	session device.LegacySession
	params  tx.TransactionParams

	pending *device.Pending[device.LegacyTransferResponse]
}

func (c *legacyCall) VisitTransfer() (err error) {
	c.pending, err = c.session.LegacySignTransferTx(c.ctx, c.params)
	return err
}

func (c *legacyCall) VisitTransferCreate() (err error) {
	c.pending, err = c.session.LegacySignTransferCreateTx(c.ctx, c.params)
	return err
}

func (c *legacyCall) VisitTransferCrossChain() (err error) {
	if c.params.RecipientChainID == nil {
		return missingRecipientChain()
	}
	c.pending, err = c.session.LegacySignTransferCrossChainTx(c.ctx, c.params)
	return err
}

// DispatchLegacy 与 Dispatch 相同，但使用旧版入口
func DispatchLegacy(ctx context.Context, v tx.Variant, params tx.TransactionParams, session device.LegacySession) (*device.Pending[device.LegacyTransferResponse], error) {
	if v == nil {
		return nil, &tx.EncodingError{Field: "variant", Reason: "missing transaction type"}
	}
	call := &legacyCall{ctx: ctx, session: session, params: params}
	if err := v.Accept(call); err != nil {
		return nil, err
	}
	return call.pending, nil
}

// SignBlob 签名原始消息，设备先哈希再签名
func SignBlob(ctx context.Context, session device.Session, path string, message []byte) (*device.Pending[device.SignResponse], error) {
	return session.Sign(ctx, path, message)
}

// SignRawHash 直接签名调用方提供的摘要，不做任何哈希。
// 摘要在本地先解析一次，格式错误时不接触设备。
func SignRawHash(ctx context.Context, session device.Session, path string, hashText string) (*device.Pending[device.SignResponse], error) {
	if _, err := crypto_util.ParseDigest(hashText); err != nil {
		return nil, fmt.Errorf("sign hash: %w", err)
	}
	return session.SignHash(ctx, path, hashText)
}

func missingRecipientChain() error {
	return &tx.EncodingError{Field: "recipient_chainId", Reason: "missing recipient_chainId"}
}
