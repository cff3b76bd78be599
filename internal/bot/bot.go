// Package bot 把事件总线、API 与队列组合成一个运行时
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lichas/cqhttp-go/internal/api"
	"github.com/Lichas/cqhttp-go/internal/bus"
	"github.com/Lichas/cqhttp-go/internal/logging"
	"github.com/Lichas/cqhttp-go/pkg/event"
	"github.com/Lichas/cqhttp-go/pkg/message"
)

// ErrUnsupportedReplyTarget 事件没有可回复的对象，例如元事件
var ErrUnsupportedReplyTarget = errors.New("event to reply is not a message event")

// Context 传给处理函数的参数
type Context struct {
	Bot   *Bot
	Event event.Event
}

// Reply 回复当前事件
func (c *Context) Reply(ctx context.Context, msg fmt.Stringer) (int64, error) {
	return c.Bot.Send(ctx, c.Event, msg)
}

// Handler 事件处理函数
type Handler = bus.Handler[*Context]

// Bot 机器人运行时
type Bot struct {
	api   *api.API
	bus   *bus.EventBus[*Context]
	queue *bus.Queue
}

// New 创建机器人
func New(ctx context.Context, caller api.Caller, queue *bus.Queue) *Bot {
	if queue == nil {
		queue = bus.NewQueue(0)
	}
	return &Bot{
		api:   api.New(caller),
		bus:   bus.NewEventBus[*Context](ctx),
		queue: queue,
	}
}

// API 返回 API 封装
func (b *Bot) API() *api.API { return b.api }

// Queue 返回事件队列
func (b *Bot) Queue() *bus.Queue { return b.queue }

// Subscribe 订阅事件
func (b *Bot) Subscribe(name string, handler Handler) { b.bus.Subscribe(name, handler) }

// Unsubscribe 取消订阅
func (b *Bot) Unsubscribe(name string) { b.bus.Unsubscribe(name) }

// HookBefore 注册前置钩子，没有订阅者时才会调用
func (b *Bot) HookBefore(name string, handler Handler) { b.bus.HookBefore(name, handler) }

// UnhookBefore 移除前置钩子
func (b *Bot) UnhookBefore(name string) { b.bus.UnhookBefore(name) }

// Send 回复事件
// 群消息发回群，私聊发给发送者，其余事件返回 ErrUnsupportedReplyTarget
func (b *Bot) Send(ctx context.Context, ev event.Event, msg fmt.Stringer) (int64, error) {
	switch e := ev.(type) {
	case *event.GroupMessage:
		return b.api.SendGroupMsg(ctx, e.GroupID, msg, false, e.SelfID)
	case *event.PrivateMessage:
		return b.api.SendPrivateMsg(ctx, e.Sender.UserID, msg, false, e.SelfID)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedReplyTarget, ev.Name())
	}
}

// SendText 回复纯文本
func (b *Bot) SendText(ctx context.Context, ev event.Event, text string) (int64, error) {
	return b.Send(ctx, ev, message.FromText(text))
}

// Approve 处理好友或加群请求
func (b *Bot) Approve(ctx context.Context, ev event.Event, approve bool, remark string) error {
	switch e := ev.(type) {
	case *event.FriendRequest:
		return b.api.SetFriendAddRequest(ctx, e.Flag, approve, remark, e.SelfID)
	case *event.GroupRequest:
		return b.api.SetGroupAddRequest(ctx, e.Flag, e.SubType, approve, remark, e.SelfID)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedReplyTarget, ev.Name())
	}
}

// SendTo 把消息放入出站队列，由 Run 发送
func (b *Bot) SendTo(messageType string, targetID, selfID int64, msg fmt.Stringer) error {
	switch messageType {
	case bus.TargetPrivate, bus.TargetGroup:
	default:
		return fmt.Errorf("%w: %q", api.ErrUnsupportedMsgType, messageType)
	}
	return b.queue.PublishOutbound(bus.NewOutbound(messageType, targetID, selfID, msg))
}

// HandleEvent 记录并分发事件，返回是否有处理函数
func (b *Bot) HandleEvent(ev event.Event) bool {
	logEvent(ev)
	return b.bus.Emit(ev.Name(), &Context{Bot: b, Event: ev})
}

// Run 消费入站与出站队列，直到 ctx 结束或队列关闭
func (b *Bot) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.sendLoop(ctx)
	}()

	err := b.dispatchLoop(ctx)
	<-done
	b.bus.Wait()

	if errors.Is(err, bus.ErrBusClosed) {
		return nil
	}
	return err
}

// Wait 等待已分发的处理函数返回
func (b *Bot) Wait() {
	b.bus.Wait()
}

func (b *Bot) dispatchLoop(ctx context.Context) error {
	for {
		ev, err := b.queue.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		b.HandleEvent(ev)
	}
}

func (b *Bot) sendLoop(ctx context.Context) {
	for {
		msg, err := b.queue.ConsumeOutbound(ctx)
		if err != nil {
			return
		}
		if err := b.deliver(ctx, msg); err != nil {
			if lg := logging.Get(); lg != nil && lg.API != nil {
				lg.API.Printf("deliver target=%s error=%v", msg.Key(), err)
			}
		}
	}
}

func (b *Bot) deliver(ctx context.Context, msg *bus.Outbound) error {
	text := message.Raw(msg.Message)
	switch msg.MessageType {
	case bus.TargetGroup:
		_, err := b.api.SendGroupMsg(ctx, msg.TargetID, text, false, msg.SelfID)
		return err
	case bus.TargetPrivate:
		_, err := b.api.SendPrivateMsg(ctx, msg.TargetID, text, false, msg.SelfID)
		return err
	default:
		return fmt.Errorf("%w: %q", api.ErrUnsupportedMsgType, msg.MessageType)
	}
}

// logEvent 记录收到的消息
func logEvent(ev event.Event) {
	switch e := ev.(type) {
	case *event.GroupMessage:
		logging.Events().Printf("group=%d sender=%d(%s): %s", e.GroupID, e.Sender.UserID, e.Sender.Nickname, logging.Truncate(e.Message, 300))
	case *event.PrivateMessage:
		logging.Events().Printf("private sender=%d(%s): %s", e.Sender.UserID, e.Sender.Nickname, logging.Truncate(e.Message, 300))
	case *event.Unknown:
		logging.Events().Printf("unknown post_type=%q raw=%s", e.PostType, logging.Truncate(string(e.Raw), 300))
	}
}
