package bip32

import (
	"crypto/ed25519"
	"errors"
)

// ExtendedKey 包装了 SLIP-10 (ed25519) 扩展密钥
type ExtendedKey interface {
	// PublicKey 返回 32 字节 Ed25519 公钥
	PublicKey() ed25519.PublicKey
	// PrivateKey 返回可直接用于签名的私钥
	PrivateKey() ed25519.PrivateKey
	// Derive 根据索引派生子密钥 (ed25519 只支持硬化派生)
	Derive(index uint32) (ExtendedKey, error)
}

// HDWallet 定义了分层确定性钱包的基本行为
type HDWallet interface {
	// MasterKey 返回主扩展密钥
	MasterKey() ExtendedKey
	// DerivePath 根据路径 (如 "m/44'/626'/0'/0/0") 派生密钥
	DerivePath(path string) (ExtendedKey, error)
}

var (
	ErrInvalidSeed = errors.New("无效的种子")
	ErrInvalidPath = errors.New("无效的派生路径")
)
