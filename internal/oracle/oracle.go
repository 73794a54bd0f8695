package oracle

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/bip32"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Oracle 负责发出签名请求并验证设备返回的结果。
// Begin* 只发出请求，不等待用户审批；调用方在驱动审批之后调用 Attempt.Await。
// Oracle 本身没有超时，截止时间由调用方通过 ctx 控制。
type Oracle struct {
	log *zap.Logger
	rec Recorder
}

type Option func(*Oracle)

func WithRecorder(r Recorder) Option {
	return func(o *Oracle) {
		if r != nil {
			o.rec = r
		}
	}
}

func New(log *zap.Logger, opts ...Option) *Oracle {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Oracle{log: log, rec: nopRecorder{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Oracle) newAttempt(mode Mode, path string) *Attempt {
	o.rec.AttemptStarted(string(mode))
	return &Attempt{
		ID:      uuid.NewString(),
		Mode:    mode,
		Path:    path,
		log:     o.log,
		rec:     o.rec,
		started: time.Now(),
		state:   StateBuilt,
	}
}

// abort 把尚未拿到 Pending 的尝试直接结束
func (o *Oracle) abort(a *Attempt, err error) *Attempt {
	state := StateFailed
	if device.IsRejected(err) {
		state = StateRejected
	}
	a.resolve = func(context.Context) (resolution, error) { return resolution{}, err }
	a.finish(Outcome{State: state, Err: err})
	return a
}

func checkPath(path string) error {
	if _, err := bip32.ParseKadenaPath(path); err != nil {
		return &tx.EncodingError{Field: "path", Reason: "path: " + err.Error()}
	}
	return nil
}

// publicKey 向设备获取 path 上的公钥 (不需要用户确认)
func publicKey(ctx context.Context, s device.Session, path string) ([]byte, error) {
	p, err := s.GetAddressAndPubKey(ctx, path, false)
	if err != nil {
		return nil, err
	}
	resp, err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.PubKey) != crypto_util.PublicKeySize {
		return nil, &crypto_util.VerificationError{Field: "public key", Got: len(resp.PubKey), Want: crypto_util.PublicKeySize}
	}
	return resp.PubKey, nil
}

func (o *Oracle) issued(a *Attempt) {
	a.setState(StateAwaitingApproval)
	o.log.Info("signing request issued",
		zap.String("attempt_id", a.ID),
		zap.String("mode", string(a.Mode)),
		zap.String("path", a.Path),
		zap.String("hash", crypto_util.HexHash(a.Hash)),
	)
}

// BeginBlob 签名任意消息，设备对 blake2b(message) 签名
func (o *Oracle) BeginBlob(ctx context.Context, s device.Session, path string, message []byte) (*Attempt, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	a := o.newAttempt(ModeBlob, path)
	a.Message = tx.NewCanonicalMessage(message)
	a.Hash = a.Message.Hash()

	pub, err := publicKey(ctx, s, path)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.PublicKey = pub

	a.setState(StateRequested)
	p, err := SignBlob(ctx, s, path, a.Message.Bytes())
	if err != nil {
		return o.abort(a, err), nil
	}
	a.resolve = waitSignature(p)
	o.issued(a)
	return a, nil
}

// BeginHash 签名调用方给出的摘要，不做哈希
func (o *Oracle) BeginHash(ctx context.Context, s device.Session, path string, hashText string) (*Attempt, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	digest, err := crypto_util.ParseDigest(hashText)
	if err != nil {
		return nil, err
	}

	a := o.newAttempt(ModeHash, path)
	a.Hash = digest

	pub, err := publicKey(ctx, s, path)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.PublicKey = pub

	a.setState(StateRequested)
	p, err := SignRawHash(ctx, s, path, hashText)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.resolve = waitSignature(p)
	o.issued(a)
	return a, nil
}

// prepareTransfer 完成本地校验、获取公钥并构造规范消息
func (o *Oracle) prepareTransfer(ctx context.Context, s device.Session, mode Mode, v tx.Variant, params tx.TransactionParams) (*Attempt, bool, error) {
	if v == nil {
		return nil, false, &tx.EncodingError{Field: "variant", Reason: "missing transaction type"}
	}
	if err := params.Validate(v); err != nil {
		return nil, false, err
	}

	a := o.newAttempt(mode, params.SigningPath)
	a.Variant = v

	pub, err := publicKey(ctx, s, params.SigningPath)
	if err != nil {
		return o.abort(a, err), false, nil
	}
	a.PublicKey = pub

	msg, err := tx.Encode(v, params, pub)
	if err != nil {
		return o.abort(a, err), false, nil
	}
	a.Message = msg
	a.Hash = msg.Hash()
	a.setState(StateRequested)
	return a, true, nil
}

// BeginTransfer 使用结构化入口签名转账，设备回显 {signature, hash}
func (o *Oracle) BeginTransfer(ctx context.Context, s device.Session, v tx.Variant, params tx.TransactionParams) (*Attempt, error) {
	a, ok, err := o.prepareTransfer(ctx, s, ModeTransfer, v, params)
	if !ok {
		return a, err
	}

	p, err := Dispatch(ctx, v, params, s)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.resolve = func(ctx context.Context) (resolution, error) {
		resp, err := p.Wait(ctx)
		if err != nil {
			return resolution{}, err
		}
		echoed, err := crypto_util.DecodeHash(resp.Hash)
		if err != nil {
			return resolution{}, err
		}
		return resolution{signature: resp.Signature, echoed: &echoed}, nil
	}
	o.issued(a)
	return a, nil
}

// BeginLegacyTransfer 使用旧版入口签名转账，设备返回 pact_command
func (o *Oracle) BeginLegacyTransfer(ctx context.Context, s device.LegacySession, v tx.Variant, params tx.TransactionParams) (*Attempt, error) {
	a, ok, err := o.prepareTransfer(ctx, s, ModeLegacyTransfer, v, params)
	if !ok {
		return a, err
	}

	p, err := DispatchLegacy(ctx, v, params, s)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.resolve = func(ctx context.Context) (resolution, error) {
		resp, err := p.Wait(ctx)
		if err != nil {
			return resolution{}, err
		}
		cmd := resp.PactCommand
		if len(cmd.Sigs) == 0 {
			return resolution{}, errno.ErrDecoding.WithMessage("pact_command has no signatures")
		}
		sig, err := hex.DecodeString(cmd.Sigs[0].Sig)
		if err != nil {
			return resolution{}, fmt.Errorf("%w: signature: %v", errno.ErrDecoding, err)
		}
		echoed, err := crypto_util.DecodeHash(cmd.Hash)
		if err != nil {
			return resolution{}, err
		}
		res := resolution{signature: sig, echoed: &echoed}
		if cmd.Cmd != "" {
			res.command = &cmd.Cmd
		}
		return res, nil
	}
	o.issued(a)
	return a, nil
}

// ShowAddress 请求设备在屏幕上展示地址并等待用户确认。
// expected 非空时，确认后的公钥必须与之相同。
func (o *Oracle) ShowAddress(ctx context.Context, s device.Session, path string, expected []byte) (*Attempt, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	a := o.newAttempt(ModeAddress, path)
	a.expected = expected
	a.setState(StateRequested)

	p, err := s.GetAddressAndPubKey(ctx, path, true)
	if err != nil {
		return o.abort(a, err), nil
	}
	a.resolve = func(ctx context.Context) (resolution, error) {
		resp, err := p.Wait(ctx)
		if err != nil {
			return resolution{}, err
		}
		return resolution{pubkey: resp.PubKey}, nil
	}
	o.issued(a)
	return a, nil
}

func waitSignature(p *device.Pending[device.SignResponse]) func(context.Context) (resolution, error) {
	return func(ctx context.Context) (resolution, error) {
		resp, err := p.Wait(ctx)
		if err != nil {
			return resolution{}, err
		}
		return resolution{signature: resp.Signature}, nil
	}
}
