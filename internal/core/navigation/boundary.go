package navigation

import (
	"context"
	"sync"
)

// Boundary 頁面的生命週期；關閉後所有綁定的請求都會被取消
type Boundary struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewBoundary 創建頁面邊界
func NewBoundary(parent context.Context) *Boundary {
	ctx, cancel := context.WithCancel(parent)
	return &Boundary{ctx: ctx, cancel: cancel}
}

// Bind 派生一個同時受 ctx 與頁面生命週期控制的 context
func (b *Boundary) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	child, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.ctx, cancel)
	return child, func() {
		stop()
		cancel()
	}
}

// Closed 頁面是否已關閉
func (b *Boundary) Closed() bool {
	return b.ctx.Err() != nil
}

// Close 關閉頁面，取消進行中的請求
func (b *Boundary) Close() {
	b.once.Do(b.cancel)
}
