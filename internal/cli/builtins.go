package cli

import (
	"context"
	"strings"

	"github.com/Lichas/cqhttp-go/internal/bot"
	"github.com/Lichas/cqhttp-go/internal/logging"
	"github.com/Lichas/cqhttp-go/pkg/event"
	"github.com/Lichas/cqhttp-go/pkg/message"
)

// builtinOptions serve 自带的处理函数开关
type builtinOptions struct {
	Ping           bool
	ApproveFriends bool
	ApproveInvites bool
}

// registerBuiltins 注册内置处理函数
// 都注册为前置钩子，用户订阅同名事件时会被覆盖
func registerBuiltins(b *bot.Bot, opts builtinOptions) {
	if opts.Ping {
		ping := func(ctx context.Context, c *bot.Context) error {
			var text string
			switch e := c.Event.(type) {
			case *event.PrivateMessage:
				text = e.Message
			case *event.GroupMessage:
				text = e.Message
			}
			if strings.TrimSpace(text) != "ping" {
				return nil
			}
			_, err := c.Reply(ctx, message.FromText("pong"))
			return err
		}
		b.HookBefore(event.NamePrivateMessage, ping)
		b.HookBefore(event.NameGroupMessage, ping)
	}

	if opts.ApproveFriends {
		b.HookBefore(event.NameFriendRequest, func(ctx context.Context, c *bot.Context) error {
			return c.Bot.Approve(ctx, c.Event, true, "")
		})
	}

	if opts.ApproveInvites {
		b.HookBefore(event.NameGroupRequest, func(ctx context.Context, c *bot.Context) error {
			req, ok := c.Event.(*event.GroupRequest)
			if !ok || req.SubType != "invite" {
				return nil
			}
			return c.Bot.Approve(ctx, req, true, "")
		})
	}

	b.HookBefore("meta_event.lifecycle", func(ctx context.Context, c *bot.Context) error {
		if meta, ok := c.Event.(*event.MetaEvent); ok {
			logging.Events().Printf("lifecycle self=%d sub_type=%s", meta.SelfID, meta.SubType)
		}
		return nil
	})
}
