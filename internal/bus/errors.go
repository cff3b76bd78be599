package bus

import "errors"

var (
	// ErrBusClosed 事件队列已关闭
	ErrBusClosed = errors.New("event bus is closed")
	// ErrBufferFull 缓冲区已满
	ErrBufferFull = errors.New("event buffer is full")
)
