package tx

import (
	"encoding/hex"
	"regexp"
	"strconv"

	"signing-oracle/pkg/bip32"

	"github.com/shopspring/decimal"
)

// 设备解析器对各字段的长度上限
const (
	RecipientLen       = 64
	MaxNetworkLen      = 20
	MaxAmountLen       = 32
	MaxNamespaceLen    = 16
	MaxModuleLen       = 32
	MaxGasPriceLen     = 10
	MaxGasLimitLen     = 20
	MaxCreationTimeLen = 12
	MaxChainID         = 99
	MaxNonceLen        = 32
	MaxTTLLen          = 20
)

const (
	defaultModule       = "coin"
	missingRecipientMsg = "missing recipient_chainId"
)

// TransactionParams 是结构化转账签名的输入参数，调用方构造后不再修改。
// 数值字段保持字符串原样输出，避免精度丢失。
type TransactionParams struct {
	SigningPath      string  `json:"path"`
	Recipient        string  `json:"recipient"`
	Amount           string  `json:"amount"`
	Network          string  `json:"network"`
	ChainID          uint32  `json:"chainId"`
	GasPrice         string  `json:"gasPrice"`
	GasLimit         string  `json:"gasLimit"`
	CreationTime     int64   `json:"creationTime"`
	TTL              string  `json:"ttl"`
	Nonce            string  `json:"nonce"`
	Namespace        string  `json:"namespace,omitempty"`
	Module           string  `json:"module,omitempty"`
	RecipientChainID *uint32 `json:"recipient_chainId,omitempty"`
}

// JSON number 语法，不允许负号
var numberLiteral = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Validate 检查 variant 所需的字段以及设备解析器的长度限制
func (p TransactionParams) Validate(v Variant) error {
	if _, isCross := v.(TransferCrossChain); isCross {
		if p.RecipientChainID == nil {
			return &EncodingError{Field: "recipient_chainId", Reason: missingRecipientMsg}
		}
		if *p.RecipientChainID > MaxChainID {
			return fieldError("recipient_chainId", "%d exceeds %d", *p.RecipientChainID, MaxChainID)
		}
	}

	if _, err := bip32.ParseKadenaPath(p.SigningPath); err != nil {
		return fieldError("path", "%v", err)
	}
	if len(p.Recipient) != RecipientLen {
		return fieldError("recipient", "want %d hex characters, got %d", RecipientLen, len(p.Recipient))
	}
	if _, err := hex.DecodeString(p.Recipient); err != nil || !isLowerHex(p.Recipient) {
		return fieldError("recipient", "not a lowercase hex public key")
	}

	if err := checkText("network", p.Network, 1, MaxNetworkLen); err != nil {
		return err
	}
	if err := checkText("nonce", p.Nonce, 0, MaxNonceLen); err != nil {
		return err
	}
	if err := checkText("namespace", p.Namespace, 0, MaxNamespaceLen); err != nil {
		return err
	}
	if err := checkText("module", p.Module, 0, MaxModuleLen); err != nil {
		return err
	}

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"amount", p.Amount, MaxAmountLen},
		{"gasPrice", p.GasPrice, MaxGasPriceLen},
		{"gasLimit", p.GasLimit, MaxGasLimitLen},
		{"ttl", p.TTL, MaxTTLLen},
	} {
		if err := checkDecimal(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if p.CreationTime < 0 {
		return fieldError("creationTime", "must not be negative")
	}
	if n := len(strconv.FormatInt(p.CreationTime, 10)); n > MaxCreationTimeLen {
		return fieldError("creationTime", "%d digits exceeds %d", n, MaxCreationTimeLen)
	}
	if p.ChainID > MaxChainID {
		return fieldError("chainId", "%d exceeds %d", p.ChainID, MaxChainID)
	}
	return nil
}

// ModuleName 返回 "<namespace>.<module>"，两者任一为空时退回 coin
func (p TransactionParams) ModuleName() string {
	if p.Namespace != "" && p.Module != "" {
		return p.Namespace + "." + p.Module
	}
	return defaultModule
}

func checkDecimal(field, value string, max int) error {
	if value == "" {
		return fieldError(field, "required")
	}
	if len(value) > max {
		return fieldError(field, "length %d exceeds %d", len(value), max)
	}
	if !numberLiteral.MatchString(value) {
		return fieldError(field, "%q is not a non-negative decimal literal", value)
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return fieldError(field, "%v", err)
	}
	return nil
}

// 模板不做转义，所以拒绝引号、反斜杠与控制字符
func checkText(field, value string, min, max int) error {
	if len(value) < min {
		return fieldError(field, "required")
	}
	if len(value) > max {
		return fieldError(field, "length %d exceeds %d", len(value), max)
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '"' || c == '\\' || c < 0x20 || c == 0x7f {
			return fieldError(field, "invalid character %q", c)
		}
	}
	return nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
