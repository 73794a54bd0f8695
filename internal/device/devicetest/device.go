// Package devicetest 提供内存中的模拟设备，用于测试和演示。
// 签名请求会进入审批队列，由另一个 goroutine 通过 NextReview 取出并批准或拒绝，
// 与真实设备上 "发出请求 -> 用户在屏幕上确认 -> 返回结果" 的顺序一致。
package devicetest

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/bip32"
	"signing-oracle/pkg/bip39"
	"signing-oracle/pkg/crypto_util"
)

// ZemuMnemonic 是模拟器默认使用的测试助记词
const ZemuMnemonic = "equip will roof matter pink blind book anxiety banner elbow sun young"

// Options 在构造时传入，构造后不可修改
type Options struct {
	// Mnemonic 为空时随机生成
	Mnemonic string
	// BlindSigning 对应设备上的 expert 模式，签名裸哈希时必须开启
	BlindSigning bool

	// 以下用于构造异常设备
	CorruptSignature bool // 返回的签名被篡改
	ForeignMessage   bool // 结构化签名时对另一条消息签名并回显其哈希
	QueueSize        int
}

// Device 是一个满足 device.LegacySession 的模拟设备
type Device struct {
	wallet *bip32.Wallet
	opts   Options

	reviews chan *Review

	mu           sync.Mutex
	blindSigning bool
	calls        []string
}

var _ device.LegacySession = (*Device)(nil)

func New(opts Options) (*Device, error) {
	svc := bip39.NewMnemonicService()
	mnemonic := opts.Mnemonic
	if mnemonic == "" {
		var err error
		if mnemonic, err = svc.GenerateMnemonic(256); err != nil {
			return nil, err
		}
	}
	seed, err := svc.MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, err
	}
	wallet, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	return &Device{
		wallet:       wallet,
		opts:         opts,
		reviews:      make(chan *Review, opts.QueueSize),
		blindSigning: opts.BlindSigning,
	}, nil
}

// ToggleBlindSigning 切换 expert 模式
func (d *Device) ToggleBlindSigning() {
	d.mu.Lock()
	d.blindSigning = !d.blindSigning
	d.mu.Unlock()
}

// Calls 返回设备收到的请求，按顺序
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// PublicKey 返回 path 上的公钥，不经过审批
func (d *Device) PublicKey(path string) (ed25519.PublicKey, error) {
	key, err := d.key(path)
	if err != nil {
		return nil, err
	}
	return key.Public().(ed25519.PublicKey), nil
}

func (d *Device) record(op string) {
	d.mu.Lock()
	d.calls = append(d.calls, op)
	d.mu.Unlock()
}

func (d *Device) key(path string) (ed25519.PrivateKey, error) {
	if _, err := bip32.ParseKadenaPath(path); err != nil {
		return nil, device.NewError(device.CodeDataInvalid)
	}
	k, err := d.wallet.DerivePath(path)
	if err != nil {
		return nil, device.NewError(device.CodeDataInvalid)
	}
	return k.PrivateKey(), nil
}

func (d *Device) sign(priv ed25519.PrivateKey, h crypto_util.ContentHash) []byte {
	sig := ed25519.Sign(priv, h[:])
	if d.opts.CorruptSignature {
		sig[0] ^= 0x01
	}
	return sig
}

// enqueue 把审批请求放入队列；队列满时请求直接失败，不阻塞调用方
func (d *Device) enqueue(r *Review) error {
	select {
	case d.reviews <- r:
		return nil
	default:
		return fmt.Errorf("devicetest: review queue full")
	}
}

func (d *Device) GetAddressAndPubKey(ctx context.Context, path string, confirm bool) (*device.Pending[device.AddressResponse], error) {
	d.record("get_address")
	key, err := d.key(path)
	if err != nil {
		return device.Resolved(device.AddressResponse{}, err), nil
	}
	pub := key.Public().(ed25519.PublicKey)
	resp := device.AddressResponse{PubKey: device.HexBytes(pub), Address: hex.EncodeToString(pub)}
	if !confirm {
		return device.Resolved(resp, nil), nil
	}

	p := device.NewPending[device.AddressResponse]()
	r := newReview(KindAddress, path, []byte(resp.Address), func() { p.Resolve(resp, nil) }, func(err error) { p.Resolve(device.AddressResponse{}, err) })
	if err := d.enqueue(r); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Device) Sign(ctx context.Context, path string, message []byte) (*device.Pending[device.SignResponse], error) {
	d.record("sign")
	key, err := d.key(path)
	if err != nil {
		return device.Resolved(device.SignResponse{}, err), nil
	}
	msg := append([]byte(nil), message...)
	return d.signDigest(KindBlob, path, key, msg, crypto_util.Blake2b256(msg))
}

func (d *Device) SignHash(ctx context.Context, path string, hash string) (*device.Pending[device.SignResponse], error) {
	d.record("sign_hash")
	d.mu.Lock()
	blind := d.blindSigning
	d.mu.Unlock()
	if !blind {
		return device.Resolved(device.SignResponse{}, device.NewError(device.CodeDataInvalid)), nil
	}
	key, err := d.key(path)
	if err != nil {
		return device.Resolved(device.SignResponse{}, err), nil
	}
	digest, err := crypto_util.ParseDigest(hash)
	if err != nil {
		return device.Resolved(device.SignResponse{}, device.NewError(device.CodeDataInvalid)), nil
	}
	return d.signDigest(KindHash, path, key, []byte(crypto_util.HexHash(digest)), digest)
}

func (d *Device) signDigest(kind Kind, path string, key ed25519.PrivateKey, shown []byte, digest crypto_util.ContentHash) (*device.Pending[device.SignResponse], error) {
	p := device.NewPending[device.SignResponse]()
	r := newReview(kind, path, shown,
		func() { p.Resolve(device.SignResponse{Signature: d.sign(key, digest)}, nil) },
		func(err error) { p.Resolve(device.SignResponse{}, err) })
	if err := d.enqueue(r); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Device) SignTransferTx(ctx context.Context, path string, params tx.TransactionParams) (*device.Pending[device.TransferResponse], error) {
	d.record("sign_transfer")
	return d.transfer(tx.Transfer{}, path, params)
}

func (d *Device) SignTransferCreateTx(ctx context.Context, path string, params tx.TransactionParams) (*device.Pending[device.TransferResponse], error) {
	d.record("sign_transfer_create")
	return d.transfer(tx.TransferCreate{}, path, params)
}

func (d *Device) SignTransferCrossChainTx(ctx context.Context, path string, params tx.TransactionParams) (*device.Pending[device.TransferResponse], error) {
	d.record("sign_transfer_cross_chain")
	return d.transfer(tx.TransferCrossChain{}, path, params)
}

// build 在设备内部构造交易，与真实设备一样把自己的公钥作为 sender
func (d *Device) build(v tx.Variant, path string, params tx.TransactionParams) (ed25519.PrivateKey, tx.CanonicalMessage, error) {
	key, err := d.key(path)
	if err != nil {
		return nil, tx.CanonicalMessage{}, err
	}
	if d.opts.ForeignMessage {
		params.Nonce = strings.Repeat("f", 8) + params.Nonce
		if len(params.Nonce) > tx.MaxNonceLen {
			params.Nonce = params.Nonce[:tx.MaxNonceLen]
		}
	}
	msg, err := tx.Encode(v, params, key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, tx.CanonicalMessage{}, device.NewError(device.CodeDataInvalid)
	}
	return key, msg, nil
}

func (d *Device) transfer(v tx.Variant, path string, params tx.TransactionParams) (*device.Pending[device.TransferResponse], error) {
	key, msg, err := d.build(v, path, params)
	if err != nil {
		return device.Resolved(device.TransferResponse{}, err), nil
	}
	digest := msg.Hash()

	p := device.NewPending[device.TransferResponse]()
	r := newReview(KindTransfer, path, msg.Bytes(),
		func() {
			p.Resolve(device.TransferResponse{Signature: d.sign(key, digest), Hash: crypto_util.EncodeHash(digest)}, nil)
		},
		func(err error) { p.Resolve(device.TransferResponse{}, err) })
	if err := d.enqueue(r); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Device) LegacySignTransferTx(ctx context.Context, params tx.TransactionParams) (*device.Pending[device.LegacyTransferResponse], error) {
	d.record("legacy_sign_transfer")
	return d.legacy(tx.Transfer{}, params)
}

func (d *Device) LegacySignTransferCreateTx(ctx context.Context, params tx.TransactionParams) (*device.Pending[device.LegacyTransferResponse], error) {
	d.record("legacy_sign_transfer_create")
	return d.legacy(tx.TransferCreate{}, params)
}

func (d *Device) LegacySignTransferCrossChainTx(ctx context.Context, params tx.TransactionParams) (*device.Pending[device.LegacyTransferResponse], error) {
	d.record("legacy_sign_transfer_cross_chain")
	return d.legacy(tx.TransferCrossChain{}, params)
}

// legacy 返回 pact_command 结构: hash 为 URL-safe base64，签名为 hex
func (d *Device) legacy(v tx.Variant, params tx.TransactionParams) (*device.Pending[device.LegacyTransferResponse], error) {
	key, msg, err := d.build(v, params.SigningPath, params)
	if err != nil {
		return device.Resolved(device.LegacyTransferResponse{}, err), nil
	}
	digest := msg.Hash()

	p := device.NewPending[device.LegacyTransferResponse]()
	r := newReview(KindTransfer, params.SigningPath, msg.Bytes(),
		func() {
			p.Resolve(device.LegacyTransferResponse{PactCommand: device.PactCommand{
				Hash: crypto_util.EncodeHash(digest),
				Sigs: []device.PactSig{{Sig: hex.EncodeToString(d.sign(key, digest))}},
				Cmd:  msg.String(),
			}}, nil)
		},
		func(err error) { p.Resolve(device.LegacyTransferResponse{}, err) })
	if err := d.enqueue(r); err != nil {
		return nil, err
	}
	return p, nil
}
