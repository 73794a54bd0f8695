package device

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"signing-oracle/internal/tx"
)

// StatusCode 在 JSON 中可以写成数字 (27014) 或 hex 字符串 ("0x6986")
type StatusCode uint16

func (c *StatusCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint16
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("status code: %w", err)
		}
		*c = StatusCode(n)
		return nil
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return fmt.Errorf("status code %q: %w", s, err)
	}
	*c = StatusCode(n)
	return nil
}

func (c StatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%04x", uint16(c)))
}

// Transcript 是一次设备会话的录制结果：设备公钥加上签名操作的返回值。
type Transcript struct {
	PublicKey   HexBytes     `json:"public_key"`
	Address     string       `json:"address,omitempty"`
	Signature   HexBytes     `json:"signature,omitempty"`
	Hash        string       `json:"hash,omitempty"`
	PactCommand *PactCommand `json:"pact_command,omitempty"`
	// Status 非零且不是 0x9000 时，签名操作以该状态码失败
	Status StatusCode `json:"status,omitempty"`
}

var ErrIncompleteTranscript = errors.New("incomplete transcript")

func ParseTranscript(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return &t, nil
}

func LoadTranscript(r io.Reader) (*Transcript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return ParseTranscript(data)
}

// ReplaySession 用录制的结果实现 Session，所有请求都立即完成。
// 不做任何签名，只把录制的数据原样交给调用方验证。
type ReplaySession struct {
	t Transcript

	mu    sync.Mutex
	calls []string
}

func NewReplaySession(t Transcript) *ReplaySession {
	return &ReplaySession{t: t}
}

// Calls 返回按顺序被调用的操作名
func (s *ReplaySession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *ReplaySession) record(op string) {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	s.mu.Unlock()
}

func (s *ReplaySession) status() error {
	if s.t.Status != 0 && uint16(s.t.Status) != CodeOK {
		return NewError(uint16(s.t.Status))
	}
	return nil
}

func (s *ReplaySession) GetAddressAndPubKey(_ context.Context, _ string, confirm bool) (*Pending[AddressResponse], error) {
	s.record("get_address")
	if len(s.t.PublicKey) == 0 {
		return Resolved(AddressResponse{}, fmt.Errorf("%w: missing public_key", ErrIncompleteTranscript)), nil
	}
	if confirm {
		if err := s.status(); err != nil {
			return Resolved(AddressResponse{}, err), nil
		}
	}
	addr := s.t.Address
	if addr == "" {
		addr = hex.EncodeToString(s.t.PublicKey)
	}
	return Resolved(AddressResponse{PubKey: s.t.PublicKey, Address: addr}, nil), nil
}

func (s *ReplaySession) Sign(_ context.Context, _ string, _ []byte) (*Pending[SignResponse], error) {
	s.record("sign")
	return s.signature(), nil
}

func (s *ReplaySession) SignHash(_ context.Context, _ string, _ string) (*Pending[SignResponse], error) {
	s.record("sign_hash")
	return s.signature(), nil
}

func (s *ReplaySession) signature() *Pending[SignResponse] {
	if err := s.status(); err != nil {
		return Resolved(SignResponse{}, err)
	}
	if len(s.t.Signature) == 0 {
		return Resolved(SignResponse{}, fmt.Errorf("%w: missing signature", ErrIncompleteTranscript))
	}
	return Resolved(SignResponse{Signature: s.t.Signature}, nil)
}

func (s *ReplaySession) SignTransferTx(_ context.Context, _ string, _ tx.TransactionParams) (*Pending[TransferResponse], error) {
	s.record("sign_transfer")
	return s.transfer(), nil
}

func (s *ReplaySession) SignTransferCreateTx(_ context.Context, _ string, _ tx.TransactionParams) (*Pending[TransferResponse], error) {
	s.record("sign_transfer_create")
	return s.transfer(), nil
}

func (s *ReplaySession) SignTransferCrossChainTx(_ context.Context, _ string, _ tx.TransactionParams) (*Pending[TransferResponse], error) {
	s.record("sign_transfer_cross_chain")
	return s.transfer(), nil
}

func (s *ReplaySession) transfer() *Pending[TransferResponse] {
	if err := s.status(); err != nil {
		return Resolved(TransferResponse{}, err)
	}
	if len(s.t.Signature) == 0 || s.t.Hash == "" {
		return Resolved(TransferResponse{}, fmt.Errorf("%w: missing signature or hash", ErrIncompleteTranscript))
	}
	return Resolved(TransferResponse{Signature: s.t.Signature, Hash: s.t.Hash}, nil)
}

func (s *ReplaySession) LegacySignTransferTx(_ context.Context, _ tx.TransactionParams) (*Pending[LegacyTransferResponse], error) {
	s.record("legacy_sign_transfer")
	return s.legacy(), nil
}

func (s *ReplaySession) LegacySignTransferCreateTx(_ context.Context, _ tx.TransactionParams) (*Pending[LegacyTransferResponse], error) {
	s.record("legacy_sign_transfer_create")
	return s.legacy(), nil
}

func (s *ReplaySession) LegacySignTransferCrossChainTx(_ context.Context, _ tx.TransactionParams) (*Pending[LegacyTransferResponse], error) {
	s.record("legacy_sign_transfer_cross_chain")
	return s.legacy(), nil
}

func (s *ReplaySession) legacy() *Pending[LegacyTransferResponse] {
	if err := s.status(); err != nil {
		return Resolved(LegacyTransferResponse{}, err)
	}
	if s.t.PactCommand == nil {
		return Resolved(LegacyTransferResponse{}, fmt.Errorf("%w: missing pact_command", ErrIncompleteTranscript))
	}
	return Resolved(LegacyTransferResponse{PactCommand: *s.t.PactCommand}, nil)
}
