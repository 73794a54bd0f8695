package store

import (
	"encoding/hex"
	"time"

	"signing-oracle/internal/oracle"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"
)

// Record 签名尝试结果记录 (JSON 存入缓存)
type Record struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Variant    string    `json:"variant,omitempty"`
	Path       string    `json:"path"`
	State      string    `json:"state"` // signed, rejected, failed, awaiting_approval
	Verified   bool      `json:"verified"`
	PublicKey  string    `json:"public_key,omitempty"` // hex
	Signature  string    `json:"signature,omitempty"`  // hex
	HashHex    string    `json:"hash_hex,omitempty"`
	HashB64URL string    `json:"hash_b64url,omitempty"`
	Message    string    `json:"message,omitempty"`
	ErrCode    int       `json:"err_code,omitempty"`
	ErrMsg     string    `json:"err_msg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRecord 由尝试及其结果构造记录
func NewRecord(a *oracle.Attempt, o oracle.Outcome) Record {
	r := Record{
		ID:        a.ID,
		Mode:      string(a.Mode),
		Path:      a.Path,
		State:     o.State.String(),
		Verified:  o.Verified(),
		Message:   a.Message.String(),
		CreatedAt: time.Now().UTC(),
	}
	if a.Variant != nil {
		r.Variant = a.Variant.String()
	}
	if len(o.PublicKey) > 0 {
		r.PublicKey = hex.EncodeToString(o.PublicKey)
	}
	if len(o.Signature) > 0 {
		r.Signature = hex.EncodeToString(o.Signature)
	}

	hash := o.Hash
	if hash == (crypto_util.ContentHash{}) {
		hash = a.Hash
	}
	if a.Mode != oracle.ModeAddress {
		r.HashHex = crypto_util.HexHash(hash)
		r.HashB64URL = crypto_util.EncodeHash(hash)
	}
	if o.Err != nil {
		r.ErrCode, r.ErrMsg = errno.Decode(o.Err)
	}
	return r
}
