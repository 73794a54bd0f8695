package oracle

import (
	"fmt"

	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"
)

var (
	// ErrSignatureInvalid 签名格式正确但验证不通过
	ErrSignatureInvalid = errno.ErrSignatureInvalid
	// ErrHashMismatch 设备回显的哈希与本地计算的不一致
	ErrHashMismatch = errno.ErrHashMismatch
)

// HashMismatchError 记录两个哈希的具体值
type HashMismatchError struct {
	Local  crypto_util.ContentHash
	Echoed crypto_util.ContentHash
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("%s: local %s, device %s", ErrHashMismatch.Message, e.Local, e.Echoed)
}

func (e *HashMismatchError) Unwrap() error {
	return ErrHashMismatch
}
