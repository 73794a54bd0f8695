package device

import (
	"context"
	"sync"
)

// Pending 是已发出但尚未完成的设备请求。
// 发出请求的一方立即拿到 Pending；由另一方 (审批驱动) 调用 Resolve 完成它，
// 调用方在审批开始之后再 Wait。
type Pending[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func NewPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolved 返回一个已经完成的 Pending
func Resolved[T any](val T, err error) *Pending[T] {
	p := NewPending[T]()
	p.Resolve(val, err)
	return p
}

// Resolve 只有第一次调用生效，返回本次调用是否生效
func (p *Pending[T]) Resolve(val T, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.val, p.err = val, err
		close(p.done)
		resolved = true
	})
	return resolved
}

// Done 在 Pending 完成后关闭
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait 阻塞直到设备给出结果或 ctx 结束。
// ctx 结束不会改变 Pending 本身，之后仍可再次 Wait。
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
