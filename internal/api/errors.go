package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport 网络或 HTTP 层失败，由调用方决定是否重试
	ErrTransport = errors.New("transport error")
	// ErrAction OneBot 返回 status=failed
	ErrAction = errors.New("onebot action failed")
	// ErrUnsupportedMsgType 不支持的消息类型
	ErrUnsupportedMsgType = errors.New("unsupported message type")
)

// HTTPError 非 2xx 响应
type HTTPError struct {
	Action     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s: http %d: %s", ErrTransport, e.Action, e.StatusCode, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrTransport
}

// ActionError 动作执行失败
type ActionError struct {
	Action  string
	RetCode int64
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s: retcode=%d %s", ErrAction, e.Action, e.RetCode, e.Message)
}

func (e *ActionError) Is(target error) bool {
	return target == ErrAction
}
