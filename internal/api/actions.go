package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// MsgType 消息类型
type MsgType int

const (
	MsgPrivate MsgType = iota
	MsgGroup
	MsgDiscuss
)

func (t MsgType) String() string {
	switch t {
	case MsgPrivate:
		return "private"
	case MsgGroup:
		return "group"
	case MsgDiscuss:
		return "discuss"
	default:
		return fmt.Sprintf("MsgType(%d)", int(t))
	}
}

// ParseMsgType 解析 private / group / discuss
func ParseMsgType(s string) (MsgType, error) {
	switch s {
	case "private":
		return MsgPrivate, nil
	case "group":
		return MsgGroup, nil
	case "discuss":
		return MsgDiscuss, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMsgType, s)
}

// MessageID send_* 返回的数据
type MessageID struct {
	MessageID int64 `json:"message_id"`
}

// API 常用动作的封装
type API struct {
	caller Caller
}

// New 包装 Caller
func New(caller Caller) *API {
	return &API{caller: caller}
}

// Caller 返回底层 Caller
func (a *API) Caller() Caller {
	return a.caller
}

// Call 序列化参数并调用动作
func (a *API) Call(ctx context.Context, action string, params interface{}) (*Response, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", action, err)
	}
	return a.caller.CallAction(ctx, action, body)
}

type sendPrivateParams struct {
	UserID     int64  `json:"user_id"`
	Message    string `json:"message"`
	AutoEscape bool   `json:"auto_escape"`
	SelfID     int64  `json:"self_id,omitempty"`
}

type sendGroupParams struct {
	GroupID    int64  `json:"group_id"`
	Message    string `json:"message"`
	AutoEscape bool   `json:"auto_escape"`
	SelfID     int64  `json:"self_id,omitempty"`
}

// SendPrivateMsg 发送私聊消息
// autoEscape 为 true 时消息作为纯文本发送，不解析 CQ 码
func (a *API) SendPrivateMsg(ctx context.Context, userID int64, message fmt.Stringer, autoEscape bool, selfID int64) (int64, error) {
	resp, err := a.Call(ctx, "send_private_msg", sendPrivateParams{
		UserID:     userID,
		Message:    message.String(),
		AutoEscape: autoEscape,
		SelfID:     selfID,
	})
	return messageID(resp, err)
}

// SendGroupMsg 发送群消息
func (a *API) SendGroupMsg(ctx context.Context, groupID int64, message fmt.Stringer, autoEscape bool, selfID int64) (int64, error) {
	resp, err := a.Call(ctx, "send_group_msg", sendGroupParams{
		GroupID:    groupID,
		Message:    message.String(),
		AutoEscape: autoEscape,
		SelfID:     selfID,
	})
	return messageID(resp, err)
}

// SendMsg 按类型发送消息，讨论组不支持
func (a *API) SendMsg(ctx context.Context, msgType MsgType, groupID, userID int64, message fmt.Stringer, autoEscape bool, selfID int64) (int64, error) {
	switch msgType {
	case MsgPrivate:
		return a.SendPrivateMsg(ctx, userID, message, autoEscape, selfID)
	case MsgGroup:
		return a.SendGroupMsg(ctx, groupID, message, autoEscape, selfID)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMsgType, msgType)
	}
}

// GetMsg 获取消息
func (a *API) GetMsg(ctx context.Context, messageID int64, selfID int64) (*Response, error) {
	return a.Call(ctx, "get_msg", map[string]int64{
		"message_id": messageID,
		"self_id":    selfID,
	})
}

// DeleteMsg 撤回消息
func (a *API) DeleteMsg(ctx context.Context, messageID int64, selfID int64) error {
	_, err := a.Call(ctx, "delete_msg", map[string]int64{
		"message_id": messageID,
		"self_id":    selfID,
	})
	return err
}

// SetFriendAddRequest 处理加好友请求
func (a *API) SetFriendAddRequest(ctx context.Context, flag string, approve bool, remark string, selfID int64) error {
	_, err := a.Call(ctx, "set_friend_add_request", map[string]interface{}{
		"flag":    flag,
		"approve": approve,
		"remark":  remark,
		"self_id": selfID,
	})
	return err
}

// SetGroupAddRequest 处理加群请求或邀请
// subType 为 add 或 invite，拒绝时 reason 为拒绝理由
func (a *API) SetGroupAddRequest(ctx context.Context, flag, subType string, approve bool, reason string, selfID int64) error {
	_, err := a.Call(ctx, "set_group_add_request", map[string]interface{}{
		"flag":     flag,
		"sub_type": subType,
		"approve":  approve,
		"reason":   reason,
		"self_id":  selfID,
	})
	return err
}

func messageID(resp *Response, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	var data MessageID
	if len(resp.Data) > 0 {
		_ = json.Unmarshal(resp.Data, &data)
	}
	return data.MessageID, nil
}
