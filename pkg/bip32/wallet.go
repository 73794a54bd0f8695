package bip32

import (
	"crypto/ed25519"
	"fmt"

	"github.com/anyproto/go-slip10"
)

// SlipKey 实现了 ExtendedKey 接口 (SLIP-0010, ed25519 曲线)。
// 派生交给 go-slip10，这里记住种子和完整路径，子密钥从种子重新派生。
type SlipKey struct {
	seed []byte
	path Path
	priv ed25519.PrivateKey
}

func newSlipKey(seed []byte, path Path) (*SlipKey, error) {
	priv, err := derivePrivate(seed, path)
	if err != nil {
		return nil, err
	}
	return &SlipKey{seed: seed, path: path, priv: priv}, nil
}

// derivePrivate 空路径返回主密钥
func derivePrivate(seed []byte, path Path) (ed25519.PrivateKey, error) {
	if len(path) == 0 {
		node, err := slip10.NewMasterNode(seed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
		_, priv := node.Keypair()
		return priv, nil
	}
	node, err := slip10.DeriveForPath(path.String(), seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	_, priv := node.Keypair()
	return priv, nil
}

func (k *SlipKey) PrivateKey() ed25519.PrivateKey {
	return k.priv
}

func (k *SlipKey) PublicKey() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Path 返回该密钥的完整派生路径
func (k *SlipKey) Path() Path {
	return k.path
}

// Derive 派生子密钥。
// ed25519 曲线没有非硬化派生，未设置硬化位的索引按硬化处理。
func (k *SlipKey) Derive(index uint32) (ExtendedKey, error) {
	child := make(Path, len(k.path), len(k.path)+1)
	copy(child, k.path)
	return newSlipKey(k.seed, append(child, index|HardenedKeyStart))
}

// Wallet 实现 HDWallet 接口
type Wallet struct {
	masterKey *SlipKey
}

// NewMasterKeyFromSeed 使用 BIP-39 种子生成主密钥
func NewMasterKeyFromSeed(seed []byte) (*Wallet, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrInvalidSeed
	}

	master, err := newSlipKey(append([]byte(nil), seed...), nil)
	if err != nil {
		return nil, err
	}
	return &Wallet{masterKey: master}, nil
}

func (w *Wallet) MasterKey() ExtendedKey {
	return w.masterKey
}

// DerivePath 解析路径并派生密钥
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	hardened := make(Path, len(p))
	for i, index := range p {
		hardened[i] = index | HardenedKeyStart
	}
	return newSlipKey(w.masterKey.seed, hardened)
}
