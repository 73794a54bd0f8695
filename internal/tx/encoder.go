package tx

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"signing-oracle/pkg/crypto_util"
)

// CanonicalMessage 是被哈希和签名的确切字节，构造后不可变
type CanonicalMessage struct {
	b []byte
}

// NewCanonicalMessage 拷贝 b，调用方之后修改 b 不影响消息
func NewCanonicalMessage(b []byte) CanonicalMessage {
	return CanonicalMessage{b: bytes.Clone(b)}
}

func (m CanonicalMessage) Bytes() []byte  { return bytes.Clone(m.b) }
func (m CanonicalMessage) Len() int       { return len(m.b) }
func (m CanonicalMessage) String() string { return string(m.b) }

func (m CanonicalMessage) Hash() crypto_util.ContentHash {
	return crypto_util.Blake2b256(m.b)
}

// shape 是各交易类型在模板中的差异部分
type shape struct {
	function   string
	keyset     bool
	crossChain bool
}

func (s *shape) VisitTransfer() error {
	*s = shape{function: "transfer"}
	return nil
}

func (s *shape) VisitTransferCreate() error {
	*s = shape{function: "transfer-create", keyset: true}
	return nil
}

func (s *shape) VisitTransferCrossChain() error {
	*s = shape{function: "transfer-crosschain", keyset: true, crossChain: true}
	return nil
}

// Encode 按设备内部的固定模板生成规范消息。
// signer 是设备在 SigningPath 上的公钥，设备会把它作为 sender 填入交易。
// 字段顺序固定，数值字段原样输出。
func Encode(v Variant, p TransactionParams, signer []byte) (CanonicalMessage, error) {
	if v == nil {
		return CanonicalMessage{}, &EncodingError{Field: "variant", Reason: "missing transaction type"}
	}
	if err := p.Validate(v); err != nil {
		return CanonicalMessage{}, err
	}
	if len(signer) != crypto_util.PublicKeySize {
		return CanonicalMessage{}, fieldError("signer", "want %d bytes, got %d", crypto_util.PublicKeySize, len(signer))
	}

	var s shape
	if err := v.Accept(&s); err != nil {
		return CanonicalMessage{}, err
	}

	var (
		mod    = p.ModuleName()
		key    = hex.EncodeToString(signer)
		target string
	)
	if s.crossChain {
		target = strconv.FormatUint(uint64(*p.RecipientChainID), 10)
	}

	var b bytes.Buffer
	b.Grow(512 + len(p.Nonce))

	b.WriteString(`{"networkId":"`)
	b.WriteString(p.Network)
	b.WriteString(`","payload":{"exec":{"data":`)
	if s.keyset {
		b.WriteString(`{"ks":{"pred":"keys-all","keys":["`)
		b.WriteString(p.Recipient)
		b.WriteString(`"]}}`)
	} else {
		b.WriteString(`{}`)
	}

	// code: (<mod>.<fn> \"k:<signer>\" \"k:<recipient>\" ... <amount>)
	b.WriteString(`,"code":"(`)
	b.WriteString(mod)
	b.WriteByte('.')
	b.WriteString(s.function)
	b.WriteString(` \"k:`)
	b.WriteString(key)
	b.WriteString(`\" \"k:`)
	b.WriteString(p.Recipient)
	b.WriteString(`\"`)
	if s.keyset {
		b.WriteString(` (read-keyset \"ks\")`)
	}
	if s.crossChain {
		b.WriteString(` \"`)
		b.WriteString(target)
		b.WriteString(`\"`)
	}
	b.WriteByte(' ')
	b.WriteString(p.Amount)

	// signers / clist
	b.WriteString(`)"}},"signers":[{"pubKey":"`)
	b.WriteString(key)
	b.WriteString(`","clist":[{"args":["k:`)
	b.WriteString(key)
	b.WriteString(`","k:`)
	b.WriteString(p.Recipient)
	b.WriteString(`",`)
	b.WriteString(p.Amount)
	if s.crossChain {
		b.WriteString(`,"`)
		b.WriteString(target)
		b.WriteByte('"')
	}
	b.WriteString(`],"name":"`)
	b.WriteString(mod)
	b.WriteString(`.TRANSFER`)
	if s.crossChain {
		b.WriteString(`_XCHAIN`)
	}
	b.WriteString(`"},{"args":[],"name":"coin.GAS"}]}]`)

	// meta
	b.WriteString(`,"meta":{"creationTime":`)
	b.WriteString(strconv.FormatInt(p.CreationTime, 10))
	b.WriteString(`,"ttl":`)
	b.WriteString(p.TTL)
	b.WriteString(`,"gasLimit":`)
	b.WriteString(p.GasLimit)
	b.WriteString(`,"chainId":"`)
	b.WriteString(strconv.FormatUint(uint64(p.ChainID), 10))
	b.WriteString(`","gasPrice":`)
	b.WriteString(p.GasPrice)
	b.WriteString(`,"sender":"k:`)
	b.WriteString(key)
	b.WriteString(`"},"nonce":"`)
	b.WriteString(p.Nonce)
	b.WriteString(`"}`)

	return CanonicalMessage{b: b.Bytes()}, nil
}
