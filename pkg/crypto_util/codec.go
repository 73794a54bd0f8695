package crypto_util

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"signing-oracle/pkg/errno"
)

// DecodingError 表示边界处的哈希文本无法解码为 32 字节
type DecodingError struct {
	Input  string
	Reason string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode hash %q: %s", e.Input, e.Reason)
}

func (e *DecodingError) Unwrap() error {
	return errno.ErrDecoding
}

// EncodeHash 把哈希编码成设备回显使用的格式: URL-safe base64, 无 '=' 填充。
func EncodeHash(h ContentHash) string {
	s := base64.StdEncoding.EncodeToString(h[:])
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	return strings.TrimRight(s, "=")
}

// DecodeHash 是 EncodeHash 的逆操作。
// 只接受 URL-safe 字母表，末尾的 '=' 填充可有可无，但出现时必须恰好补齐到 4 的倍数。
// 末位字符中未使用的比特必须为 0，每个哈希只有一种合法的无填充写法。
func DecodeHash(text string) (ContentHash, error) {
	body, pad, err := splitPadding(text)
	if err != nil {
		return ContentHash{}, err
	}
	for i := 0; i < len(body); i++ {
		if !isURLSafe(body[i]) {
			return ContentHash{}, &DecodingError{Input: text, Reason: fmt.Sprintf("invalid character %q at offset %d", body[i], i)}
		}
	}
	return decodeStd(text, strings.NewReplacer("-", "+", "_", "/").Replace(body), pad)
}

// ParseDigest 解析调用方直接提供的摘要 (raw-hash 签名模式)。
// 64 个 hex 字符按 hex 解析，其余按 base64 解析，两种字母表都接受。
func ParseDigest(text string) (ContentHash, error) {
	if len(text) == hex.EncodedLen(HashSize) {
		if raw, err := hex.DecodeString(text); err == nil {
			var h ContentHash
			copy(h[:], raw)
			return h, nil
		}
	}

	body, pad, err := splitPadding(text)
	if err != nil {
		return ContentHash{}, err
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !isURLSafe(c) && c != '+' && c != '/' {
			return ContentHash{}, &DecodingError{Input: text, Reason: fmt.Sprintf("invalid character %q at offset %d", c, i)}
		}
	}
	return decodeStd(text, strings.NewReplacer("-", "+", "_", "/").Replace(body), pad)
}

// splitPadding 去掉末尾的 '=' 并返回其个数 (最多两个)
func splitPadding(text string) (string, int, error) {
	body := strings.TrimRight(text, "=")
	pad := len(text) - len(body)
	if pad > 2 {
		return "", 0, &DecodingError{Input: text, Reason: "too much padding"}
	}
	if body == "" {
		return "", 0, &DecodingError{Input: text, Reason: "empty input"}
	}
	return body, pad, nil
}

// decodeStd 用严格模式解码: 填充必须恰好补齐，末位多余比特必须为 0
func decodeStd(input, body string, pad int) (ContentHash, error) {
	want := (4 - len(body)%4) % 4
	if pad != 0 && pad != want {
		return ContentHash{}, &DecodingError{Input: input, Reason: fmt.Sprintf("got %d padding characters, want %d", pad, want)}
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(body + strings.Repeat("=", want))
	if err != nil {
		return ContentHash{}, &DecodingError{Input: input, Reason: err.Error()}
	}
	if len(raw) != HashSize {
		return ContentHash{}, &DecodingError{Input: input, Reason: fmt.Sprintf("decoded %d bytes, want %d", len(raw), HashSize)}
	}
	var h ContentHash
	copy(h[:], raw)
	return h, nil
}

func isURLSafe(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
