package bus

import (
	"context"
	"sync"

	"github.com/Lichas/cqhttp-go/pkg/event"
)

// Queue 入站事件与出站消息队列
// 接收端只负责 PublishInbound，分发与发送在消费端完成
type Queue struct {
	inbound  chan event.Event
	outbound chan *Outbound
	mu       sync.RWMutex
	closed   bool
}

// NewQueue 创建队列
func NewQueue(bufferSize int) *Queue {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Queue{
		inbound:  make(chan event.Event, bufferSize),
		outbound: make(chan *Outbound, bufferSize),
	}
}

// PublishInbound 发布入站事件
func (q *Queue) PublishInbound(ev event.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrBusClosed
	}

	select {
	case q.inbound <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

// PublishOutbound 发布出站消息
func (q *Queue) PublishOutbound(msg *Outbound) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrBusClosed
	}

	select {
	case q.outbound <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// ConsumeInbound 消费入站事件（阻塞）
func (q *Queue) ConsumeInbound(ctx context.Context) (event.Event, error) {
	select {
	case ev, ok := <-q.inbound:
		if !ok {
			return nil, ErrBusClosed
		}
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ConsumeOutbound 消费出站消息（阻塞）
func (q *Queue) ConsumeOutbound(ctx context.Context) (*Outbound, error) {
	select {
	case msg, ok := <-q.outbound:
		if !ok {
			return nil, ErrBusClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryConsumeInbound 非阻塞消费入站事件
func (q *Queue) TryConsumeInbound() (event.Event, bool) {
	select {
	case ev, ok := <-q.inbound:
		return ev, ok
	default:
		return nil, false
	}
}

// TryConsumeOutbound 非阻塞消费出站消息
func (q *Queue) TryConsumeOutbound() (*Outbound, bool) {
	select {
	case msg, ok := <-q.outbound:
		return msg, ok
	default:
		return nil, false
	}
}

// Close 关闭队列
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.inbound)
		close(q.outbound)
	}
}

// IsClosed 检查是否已关闭
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
