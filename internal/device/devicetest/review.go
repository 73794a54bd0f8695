package devicetest

import (
	"context"
	"sync"

	"signing-oracle/internal/device"
)

type Kind string

const (
	KindAddress  Kind = "address"
	KindBlob     Kind = "blob"
	KindHash     Kind = "hash"
	KindTransfer Kind = "transfer"
)

// Review 是设备屏幕上等待用户确认的一次请求
type Review struct {
	Kind Kind
	Path string
	// Shown 是设备展示给用户的内容 (地址、消息或摘要)
	Shown []byte

	once    sync.Once
	approve func()
	reject  func(error)
}

func newReview(kind Kind, path string, shown []byte, approve func(), reject func(error)) *Review {
	return &Review{Kind: kind, Path: path, Shown: shown, approve: approve, reject: reject}
}

// Approve 批准请求；同一个 Review 只有第一次 Approve/Reject 生效
func (r *Review) Approve() {
	r.once.Do(r.approve)
}

// Reject 以 0x6986 拒绝请求
func (r *Review) Reject() {
	r.once.Do(func() { r.reject(device.NewError(device.CodeRejected)) })
}

// NextReview 阻塞直到有新的审批请求或 ctx 结束
func (d *Device) NextReview(ctx context.Context) (*Review, error) {
	select {
	case r := <-d.reviews:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ApproveNext 取出下一个审批请求并批准
func (d *Device) ApproveNext(ctx context.Context) (*Review, error) {
	r, err := d.NextReview(ctx)
	if err != nil {
		return nil, err
	}
	r.Approve()
	return r, nil
}

// RejectNext 取出下一个审批请求并拒绝
func (d *Device) RejectNext(ctx context.Context) (*Review, error) {
	r, err := d.NextReview(ctx)
	if err != nil {
		return nil, err
	}
	r.Reject()
	return r, nil
}

// AutoApprove 在后台批准所有请求，直到 ctx 结束
func (d *Device) AutoApprove(ctx context.Context) {
	go func() {
		for {
			if _, err := d.ApproveNext(ctx); err != nil {
				return
			}
		}
	}()
}
