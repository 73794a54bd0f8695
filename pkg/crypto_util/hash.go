package crypto_util

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashSize 是内容哈希的固定长度 (blake2b-256)
const HashSize = blake2b.Size256

// ContentHash 是规范消息的 32 字节摘要，也是设备实际签名的原像
type ContentHash [HashSize]byte

// Blake2b256 计算输入的 Blake2b-256 哈希值 (无 key，无 salt)。
func Blake2b256(message []byte) ContentHash {
	return blake2b.Sum256(message)
}

// HexHash 返回小写 hex 形式 (64 字符)。
func HexHash(h ContentHash) string {
	return hex.EncodeToString(h[:])
}

func (h ContentHash) String() string {
	return HexHash(h)
}

// Bytes 返回副本
func (h ContentHash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}
