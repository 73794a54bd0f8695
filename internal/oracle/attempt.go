package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signing-oracle/internal/device"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"go.uber.org/zap"
)

type Mode string

const (
	ModeBlob           Mode = "blob"
	ModeHash           Mode = "hash"
	ModeTransfer       Mode = "transfer"
	ModeLegacyTransfer Mode = "legacy_transfer"
	ModeAddress        Mode = "address"
)

// State 是一次签名尝试的状态。
// Built -> Requested -> AwaitingApproval -> Signed | Rejected | Failed
type State int

const (
	StateBuilt State = iota
	StateRequested
	StateAwaitingApproval
	StateSigned
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateRequested:
		return "requested"
	case StateAwaitingApproval:
		return "awaiting_approval"
	case StateSigned:
		return "signed"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) Terminal() bool {
	return s == StateSigned || s == StateRejected || s == StateFailed
}

// Outcome 是一次尝试的最终结果。
// 只有 State 为 StateSigned 时签名、哈希与公钥三者一致。
type Outcome struct {
	AttemptID string
	Mode      Mode
	State     State
	PublicKey []byte
	Signature []byte
	// Hash 是验签时使用的哈希 (本地计算或设备回显)
	Hash crypto_util.ContentHash
	Err  error
}

func (o Outcome) Verified() bool {
	return o.State == StateSigned && o.Err == nil
}

// resolution 是设备完成请求后交给验证步骤的数据
type resolution struct {
	signature []byte
	pubkey    []byte
	echoed    *crypto_util.ContentHash
	command   *string
}

// Attempt 是一次已发出的签名请求
type Attempt struct {
	ID        string
	Mode      Mode
	Variant   tx.Variant
	Path      string
	PublicKey []byte
	Message   tx.CanonicalMessage
	// Hash 是本地计算的哈希 (raw-hash 模式下即调用方给出的摘要)
	Hash crypto_util.ContentHash

	expected []byte
	resolve  func(ctx context.Context) (resolution, error)
	log      *zap.Logger
	rec      Recorder
	started  time.Time

	mu      sync.Mutex
	state   State
	outcome *Outcome
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.log.Debug("attempt state", zap.String("attempt_id", a.ID), zap.Stringer("state", s))
}

// Await 等待设备结果并完成验证。
// ctx 结束时返回当前 (非终态) 状态和 ctx 的错误，之后可以再次 Await。
// 终态结果会被缓存，重复调用返回同一个 Outcome。
func (a *Attempt) Await(ctx context.Context) Outcome {
	a.mu.Lock()
	if a.outcome != nil {
		o := *a.outcome
		a.mu.Unlock()
		return o
	}
	a.mu.Unlock()

	res, err := a.resolve(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Outcome{AttemptID: a.ID, Mode: a.Mode, State: a.State(), PublicKey: a.PublicKey, Hash: a.Hash, Err: err}
		}
		if device.IsRejected(err) {
			return a.finish(Outcome{State: StateRejected, Err: err})
		}
		return a.finish(Outcome{State: StateFailed, Err: err})
	}
	return a.finish(a.check(res))
}

// check 验证设备返回的签名。顺序:
// 先对设备实际签名的哈希验签，再比较该哈希与本地哈希。
func (a *Attempt) check(res resolution) Outcome {
	if a.Mode == ModeAddress {
		o := Outcome{State: StateSigned, PublicKey: res.pubkey}
		if a.expected != nil && !bytes.Equal(res.pubkey, a.expected) {
			o.State = StateFailed
			o.Err = errno.ErrAddressMismatch
		}
		return o
	}

	hash := a.Hash
	if res.echoed != nil {
		hash = *res.echoed
	}
	o := Outcome{Signature: res.signature, Hash: hash}

	ok, err := crypto_util.VerifySignature(res.signature, hash[:], a.PublicKey)
	switch {
	case err != nil:
		o.State, o.Err = StateFailed, err
	case !ok:
		o.State, o.Err = StateFailed, ErrSignatureInvalid
	case hash != a.Hash:
		o.State, o.Err = StateFailed, &HashMismatchError{Local: a.Hash, Echoed: hash}
	case res.command != nil && crypto_util.Blake2b256([]byte(*res.command)) != a.Hash:
		o.State, o.Err = StateFailed, &HashMismatchError{Local: a.Hash, Echoed: crypto_util.Blake2b256([]byte(*res.command))}
	default:
		o.State = StateSigned
	}
	return o
}

func (a *Attempt) finish(o Outcome) Outcome {
	o.AttemptID, o.Mode = a.ID, a.Mode
	if o.PublicKey == nil {
		o.PublicKey = a.PublicKey
	}

	a.mu.Lock()
	if a.outcome != nil {
		prev := *a.outcome
		a.mu.Unlock()
		return prev
	}
	a.state = o.State
	a.outcome = &o
	a.mu.Unlock()

	elapsed := time.Since(a.started)
	a.rec.AttemptFinished(string(a.Mode), o.State.String(), elapsed)

	fields := []zap.Field{
		zap.String("attempt_id", a.ID),
		zap.String("mode", string(a.Mode)),
		zap.Stringer("state", o.State),
		zap.Duration("elapsed", elapsed),
	}
	if o.Err != nil {
		a.log.Warn("attempt finished", append(fields, zap.Error(o.Err))...)
	} else {
		a.log.Info("attempt finished", fields...)
	}
	return o
}
