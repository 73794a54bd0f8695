package crypto_util

import (
	"crypto/ed25519"
	"fmt"

	"signing-oracle/pkg/errno"
)

const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// VerificationError 表示验签输入本身不合法 (长度错误)，与 "签名无效" 区分开
type VerificationError struct {
	Field string
	Got   int
	Want  int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("invalid %s length: got %d bytes, want %d", e.Field, e.Got, e.Want)
}

func (e *VerificationError) Unwrap() error {
	return errno.ErrVerificationInput
}

// VerifySignature 使用 Ed25519 验证签名，消息是 32 字节哈希本身。
// 长度不合法时返回 *VerificationError；长度正确时只返回 true/false。
func VerifySignature(signature, messageHash, pubkey []byte) (bool, error) {
	if len(signature) != SignatureSize {
		return false, &VerificationError{Field: "signature", Got: len(signature), Want: SignatureSize}
	}
	if len(messageHash) != HashSize {
		return false, &VerificationError{Field: "hash", Got: len(messageHash), Want: HashSize}
	}
	if len(pubkey) != PublicKeySize {
		return false, &VerificationError{Field: "public key", Got: len(pubkey), Want: PublicKeySize}
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), messageHash, signature), nil
}
