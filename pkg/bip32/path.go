package bip32

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	HardenedKeyStart uint32 = 0x80000000

	PurposeBIP44 = 44
	CoinKadena   = 626

	maxPathDepth = 10
)

// Path 是解析后的派生路径，每个元素已包含硬化标志位
type Path []uint32

// ParsePath 解析 BIP-32 路径。
// 支持格式: m/44'/626'/0'/0/0 或 m/44h/626h/0h/0/0，"m/" 前缀可省略。
func ParsePath(path string) (Path, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "m/")
	if path == "" || path == "m" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	segments := strings.Split(path, "/")
	if len(segments) > maxPathDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(segments), maxPathDepth)
	}

	out := make(Path, 0, len(segments))
	for _, segment := range segments {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || uint32(val) >= HardenedKeyStart {
			return nil, fmt.Errorf("%w: bad segment %q", ErrInvalidPath, segment)
		}
		index := uint32(val)
		if hardened {
			index += HardenedKeyStart
		}
		out = append(out, index)
	}
	return out, nil
}

// ParseKadenaPath 在 ParsePath 的基础上要求前缀为 m/44'/626'
func ParseKadenaPath(path string) (Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if len(p) < 2 || p[0] != HardenedKeyStart+PurposeBIP44 || p[1] != HardenedKeyStart+CoinKadena {
		return nil, fmt.Errorf("%w: %q is not under m/44'/626'", ErrInvalidPath, path)
	}
	return p, nil
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range p {
		b.WriteByte('/')
		if index >= HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(index-HardenedKeyStart), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(index), 10))
		}
	}
	return b.String()
}
