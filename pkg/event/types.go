package event

import "encoding/json"

// Base 所有事件共有的字段
type Base struct {
	PostType string `json:"post_type"`
	SelfID   int64  `json:"self_id"` // 收到事件的机器人 QQ
	Time     int64  `json:"time"`    // unix 秒
}

// Header 返回公共字段
func (b Base) Header() Base { return b }

// Sender 消息发送者
type Sender struct {
	Age      int32  `json:"age"`
	Nickname string `json:"nickname"`
	Sex      string `json:"sex"`
	UserID   int64  `json:"user_id"`
}

// FileInfo 群文件
type FileInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	BusID int64  `json:"busid"`
}

// OfflineFile 离线文件
type OfflineFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Anonymous 匿名信息
type Anonymous struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// MessageBase 消息事件公共字段
type MessageBase struct {
	Base
	MessageType string `json:"message_type"`
	SubType     string `json:"sub_type,omitempty"`
	MessageID   int64  `json:"message_id,omitempty"`
	UserID      int64  `json:"user_id"`
	Message     string `json:"message"`
	RawMessage  string `json:"raw_message,omitempty"`
	Font        int32  `json:"font,omitempty"`
	Sender      Sender `json:"sender"`
}

// NoticeBase 通知事件公共字段
type NoticeBase struct {
	Base
	NoticeType string `json:"notice_type"`
}

// PrivateMessage 私聊消息
type PrivateMessage struct {
	MessageBase
}

// GroupMessage 群消息
type GroupMessage struct {
	MessageBase
	GroupID   int64      `json:"group_id"`
	Anonymous *Anonymous `json:"anonymous,omitempty"`
}

// GroupFileUpload 群文件上传
type GroupFileUpload struct {
	NoticeBase
	GroupID int64    `json:"group_id"`
	UserID  int64    `json:"user_id"`
	File    FileInfo `json:"file"`
}

// GroupAdminChange 群管理员变动
type GroupAdminChange struct {
	NoticeBase
	SubType string `json:"sub_type"` // set, unset
	GroupID int64  `json:"group_id"`
	UserID  int64  `json:"user_id"`
}

// GroupMemberReduce 群成员减少
type GroupMemberReduce struct {
	NoticeBase
	SubType    string `json:"sub_type"` // leave, kick, kick_me
	GroupID    int64  `json:"group_id"`
	UserID     int64  `json:"user_id"`
	OperatorID int64  `json:"operator_id"`
}

// GroupMemberIncrease 群成员增加
type GroupMemberIncrease struct {
	NoticeBase
	SubType    string `json:"sub_type"` // approve, invite
	GroupID    int64  `json:"group_id"`
	UserID     int64  `json:"user_id"`
	OperatorID int64  `json:"operator_id"`
}

// GroupMute 群禁言
type GroupMute struct {
	NoticeBase
	SubType    string `json:"sub_type"` // ban, lift_ban
	GroupID    int64  `json:"group_id"`
	OperatorID int64  `json:"operator_id"`
	UserID     int64  `json:"user_id"`
	Duration   int64  `json:"duration"`
}

// FriendAdd 好友添加
type FriendAdd struct {
	NoticeBase
	UserID int64 `json:"user_id"`
}

// GroupMessageRecall 群消息撤回
type GroupMessageRecall struct {
	NoticeBase
	GroupID    int64 `json:"group_id"`
	MessageID  int64 `json:"message_id"`
	UserID     int64 `json:"user_id"`
	OperatorID int64 `json:"operator_id"`
}

// FriendMessageRecall 好友消息撤回
type FriendMessageRecall struct {
	NoticeBase
	UserID    int64 `json:"user_id"`
	MessageID int64 `json:"message_id"`
}

// FriendPoke 好友戳一戳
type FriendPoke struct {
	NoticeBase
	SubType  string `json:"sub_type"`
	UserID   int64  `json:"user_id"`
	SenderID int64  `json:"sender_id"`
	TargetID int64  `json:"target_id"`
}

// GroupPoke 群内戳一戳
type GroupPoke struct {
	NoticeBase
	SubType  string `json:"sub_type"`
	GroupID  int64  `json:"group_id"`
	SenderID int64  `json:"sender_id"`
	TargetID int64  `json:"target_id"`
}

// OfflineFileUpload 接收到离线文件
type OfflineFileUpload struct {
	NoticeBase
	File OfflineFile `json:"file"`
}

// FriendRequest 加好友请求
type FriendRequest struct {
	Base
	RequestType string `json:"request_type"`
	UserID      int64  `json:"user_id"`
	Comment     string `json:"comment"`
	Flag        string `json:"flag"`
}

// GroupRequest 加群请求或邀请
type GroupRequest struct {
	Base
	RequestType string `json:"request_type"`
	SubType     string `json:"sub_type"` // add, invite
	GroupID     int64  `json:"group_id"`
	UserID      int64  `json:"user_id"`
	Comment     string `json:"comment"`
	Flag        string `json:"flag"`
}

// MetaEvent 元事件（心跳、生命周期）
// 心跳的 status 是对象，生命周期事件没有 status 和 interval
type MetaEvent struct {
	Base
	MetaEventType string          `json:"meta_event_type"` // heartbeat, lifecycle
	SubType       string          `json:"sub_type,omitempty"`
	Status        json.RawMessage `json:"status,omitempty"`
	Interval      int64           `json:"interval,omitempty"` // 心跳间隔，毫秒
}

// Unknown 无法识别的事件，保留原始数据
type Unknown struct {
	Base
	Raw []byte `json:"-"`
}
