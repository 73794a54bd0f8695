package device

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"signing-oracle/internal/tx"
)

// Session 是一次签名尝试所使用的设备会话。
// 所有方法都只负责发出请求并立即返回 Pending，不等待用户审批。
// 一个 Session 只服务一次尝试，不在多个尝试之间共享。
type Session interface {
	GetAddressAndPubKey(ctx context.Context, path string, confirm bool) (*Pending[AddressResponse], error)
	Sign(ctx context.Context, path string, message []byte) (*Pending[SignResponse], error)
	// SignHash 直接签名给定摘要 (64 位 hex 或 base64)，不再哈希
	SignHash(ctx context.Context, path string, hash string) (*Pending[SignResponse], error)

	SignTransferTx(ctx context.Context, path string, params tx.TransactionParams) (*Pending[TransferResponse], error)
	SignTransferCreateTx(ctx context.Context, path string, params tx.TransactionParams) (*Pending[TransferResponse], error)
	SignTransferCrossChainTx(ctx context.Context, path string, params tx.TransactionParams) (*Pending[TransferResponse], error)
}

// LegacySession 额外提供旧版转账签名入口，返回 pact_command 结构
type LegacySession interface {
	Session

	LegacySignTransferTx(ctx context.Context, params tx.TransactionParams) (*Pending[LegacyTransferResponse], error)
	LegacySignTransferCreateTx(ctx context.Context, params tx.TransactionParams) (*Pending[LegacyTransferResponse], error)
	LegacySignTransferCrossChainTx(ctx context.Context, params tx.TransactionParams) (*Pending[LegacyTransferResponse], error)
}

// HexBytes 在 JSON 中以小写 hex 表示
type HexBytes []byte

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*b = raw
	return nil
}

func (b HexBytes) String() string { return hex.EncodeToString(b) }

type AddressResponse struct {
	PubKey  HexBytes `json:"pubkey"`
	Address string   `json:"address"`
}

type SignResponse struct {
	Signature HexBytes `json:"signature"`
}

// TransferResponse 是结构化转账签名的结果，Hash 为 URL-safe 无填充 base64
type TransferResponse struct {
	Signature HexBytes `json:"signature"`
	Hash      string   `json:"hash"`
}

type LegacyTransferResponse struct {
	PactCommand PactCommand `json:"pact_command"`
}

type PactCommand struct {
	Hash string    `json:"hash"`
	Sigs []PactSig `json:"sigs"`
	Cmd  string    `json:"cmd"`
}

// PactSig.Sig 为 hex 编码的签名
type PactSig struct {
	Sig string `json:"sig"`
}
