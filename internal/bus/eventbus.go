package bus

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/Lichas/cqhttp-go/internal/logging"
)

// Handler 事件处理函数
// 返回的错误只会被记录，不会传回 Emit 的调用方
type Handler[T any] func(ctx context.Context, args T) error

// EventBus 按事件名注册处理函数
// 每个事件名在 subscribers 与 hooksBefore 中各最多一个处理函数
type EventBus[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]Handler[T]
	hooksBefore map[string]Handler[T]

	ctx context.Context
	wg  sync.WaitGroup
}

// NewEventBus 创建事件总线，ctx 传给所有处理函数
func NewEventBus[T any](ctx context.Context) *EventBus[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &EventBus[T]{
		subscribers: make(map[string]Handler[T]),
		hooksBefore: make(map[string]Handler[T]),
		ctx:         ctx,
	}
}

// Subscribe 订阅事件，同名订阅会被替换
func (b *EventBus[T]) Subscribe(name string, handler Handler[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = handler
}

// Unsubscribe 取消订阅
func (b *EventBus[T]) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, name)
}

// HookBefore 注册前置钩子
// 只有在没有订阅者时才会被调用
func (b *EventBus[T]) HookBefore(name string, handler Handler[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooksBefore[name] = handler
}

// UnhookBefore 移除前置钩子
func (b *EventBus[T]) UnhookBefore(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.hooksBefore, name)
}

// Has 是否有处理函数
func (b *EventBus[T]) Has(name string) bool {
	_, ok := b.lookup(name)
	return ok
}

// Emit 分发事件
// 订阅者优先，其次前置钩子，都没有则忽略。处理函数在独立 goroutine 中运行，
// Emit 不等待其完成，也不关心其结果。返回是否找到了处理函数
func (b *EventBus[T]) Emit(name string, args T) bool {
	handler, ok := b.lookup(name)
	if !ok {
		return false
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.invoke(name, handler, args)
	}()
	return true
}

// Wait 等待所有已分发的处理函数返回
func (b *EventBus[T]) Wait() {
	b.wg.Wait()
}

func (b *EventBus[T]) lookup(name string) (Handler[T], bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if handler, ok := b.subscribers[name]; ok {
		return handler, true
	}
	if handler, ok := b.hooksBefore[name]; ok {
		return handler, true
	}
	return nil, false
}

func (b *EventBus[T]) invoke(name string, handler Handler[T], args T) {
	defer func() {
		if r := recover(); r != nil {
			logging.Bus().Printf("handler panic event=%s panic=%v\n%s", name, r, debug.Stack())
		}
	}()

	if err := handler(b.ctx, args); err != nil {
		logging.Bus().Printf("handler error event=%s err=%v", name, err)
	}
}
