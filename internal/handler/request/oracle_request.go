package request

import (
	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
)

// TransferParams 结构化转账参数，长度限制与设备解析器一致
type TransferParams struct {
	Path             string  `json:"path" binding:"omitempty,kdapath"`
	Recipient        string  `json:"recipient" binding:"required,kdahex"`
	Amount           string  `json:"amount" binding:"required,max=32,decimal"`
	Network          string  `json:"network" binding:"required,max=20"`
	ChainID          uint32  `json:"chainId" binding:"max=99"`
	GasPrice         string  `json:"gasPrice" binding:"required,max=10,decimal"`
	GasLimit         string  `json:"gasLimit" binding:"required,max=20,decimal"`
	CreationTime     int64   `json:"creationTime" binding:"min=0"`
	TTL              string  `json:"ttl" binding:"required,max=20,decimal"`
	Nonce            string  `json:"nonce" binding:"max=32"`
	Namespace        string  `json:"namespace" binding:"max=16"`
	Module           string  `json:"module" binding:"max=32"`
	RecipientChainID *uint32 `json:"recipient_chainId" binding:"omitempty,max=99"`
}

// ToParams path 为空时使用 defaultPath
func (p TransferParams) ToParams(defaultPath string) tx.TransactionParams {
	path := p.Path
	if path == "" {
		path = defaultPath
	}
	return tx.TransactionParams{
		SigningPath:      path,
		Recipient:        p.Recipient,
		Amount:           p.Amount,
		Network:          p.Network,
		ChainID:          p.ChainID,
		GasPrice:         p.GasPrice,
		GasLimit:         p.GasLimit,
		CreationTime:     p.CreationTime,
		TTL:              p.TTL,
		Nonce:            p.Nonce,
		Namespace:        p.Namespace,
		Module:           p.Module,
		RecipientChainID: p.RecipientChainID,
	}
}

type EncodeRequest struct {
	Variant      string          `json:"variant" binding:"required"`
	Params       *TransferParams `json:"params" binding:"required"`
	SignerPubKey string          `json:"signer_pubkey" binding:"required,kdahex"`
}

type HashRequest struct {
	Message string `json:"message" binding:"required"`
}

type VerifyRequest struct {
	Signature string `json:"signature" binding:"required,hexadecimal"`
	Hash      string `json:"hash" binding:"required"` // hex 或 base64
	PublicKey string `json:"public_key" binding:"required,kdahex"`
}

// AttemptRequest 用录制的设备会话跑一次完整的签名验证
type AttemptRequest struct {
	Mode    string          `json:"mode" binding:"required,oneof=blob hash transfer legacy_transfer address"`
	Variant string          `json:"variant"`
	Path    string          `json:"path" binding:"omitempty,kdapath"`
	Params  *TransferParams `json:"params"`
	Message string          `json:"message" binding:"required_if=Mode blob"`
	Hash    string          `json:"hash" binding:"required_if=Mode hash"`
	// ExpectedPubKey 只用于 address 模式
	ExpectedPubKey string             `json:"expected_public_key" binding:"omitempty,kdahex"`
	Transcript     *device.Transcript `json:"transcript" binding:"required"`
}
