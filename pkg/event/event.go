// Package event 定义 OneBot 上报事件，并根据 post_type 等字段把原始 JSON 解码为具体类型
package event

// 上报类型
const (
	PostMessage = "message"
	PostNotice  = "notice"
	PostRequest = "request"
	PostMeta    = "meta_event"
)

// 事件名，用于事件总线订阅
const (
	NamePrivateMessage      = "message.private"
	NameGroupMessage        = "message.group"
	NameGroupFileUpload     = "notice.group_upload"
	NameGroupAdminChange    = "notice.group_admin"
	NameGroupMemberReduce   = "notice.group_decrease"
	NameGroupMemberIncrease = "notice.group_increase"
	NameGroupMute           = "notice.group_ban"
	NameFriendAdd           = "notice.friend_add"
	NameGroupMessageRecall  = "notice.group_recall"
	NameFriendMessageRecall = "notice.friend_recall"
	NameGroupPoke           = "notice.poke"
	NameFriendPoke          = "notice.friend_poke"
	NameOfflineFileUpload   = "notice.offline_file"
	NameFriendRequest       = "request.friend"
	NameGroupRequest        = "request.group"
	NameMetaEvent           = "meta_event"
	NameUnknown             = "unknown"
)

// Event 上报事件
// 只有本包内的类型实现该接口
type Event interface {
	// Name 事件名，形如 message.group
	Name() string
	// Header 公共字段
	Header() Base

	isEvent()
}

func (*PrivateMessage) Name() string      { return NamePrivateMessage }
func (*GroupMessage) Name() string        { return NameGroupMessage }
func (*GroupFileUpload) Name() string     { return NameGroupFileUpload }
func (*GroupAdminChange) Name() string    { return NameGroupAdminChange }
func (*GroupMemberReduce) Name() string   { return NameGroupMemberReduce }
func (*GroupMemberIncrease) Name() string { return NameGroupMemberIncrease }
func (*GroupMute) Name() string           { return NameGroupMute }
func (*FriendAdd) Name() string           { return NameFriendAdd }
func (*GroupMessageRecall) Name() string  { return NameGroupMessageRecall }
func (*FriendMessageRecall) Name() string { return NameFriendMessageRecall }
func (*FriendPoke) Name() string          { return NameFriendPoke }
func (*GroupPoke) Name() string           { return NameGroupPoke }
func (*OfflineFileUpload) Name() string   { return NameOfflineFileUpload }
func (*FriendRequest) Name() string       { return NameFriendRequest }
func (*GroupRequest) Name() string        { return NameGroupRequest }
func (*Unknown) Name() string             { return NameUnknown }

// Name 带上 meta_event_type，例如 meta_event.heartbeat
func (e *MetaEvent) Name() string {
	if e.MetaEventType == "" {
		return NameMetaEvent
	}
	return NameMetaEvent + "." + e.MetaEventType
}

func (*PrivateMessage) isEvent()      {}
func (*GroupMessage) isEvent()        {}
func (*GroupFileUpload) isEvent()     {}
func (*GroupAdminChange) isEvent()    {}
func (*GroupMemberReduce) isEvent()   {}
func (*GroupMemberIncrease) isEvent() {}
func (*GroupMute) isEvent()           {}
func (*FriendAdd) isEvent()           {}
func (*GroupMessageRecall) isEvent()  {}
func (*FriendMessageRecall) isEvent() {}
func (*FriendPoke) isEvent()          {}
func (*GroupPoke) isEvent()           {}
func (*OfflineFileUpload) isEvent()   {}
func (*FriendRequest) isEvent()       {}
func (*GroupRequest) isEvent()        {}
func (*MetaEvent) isEvent()           {}
func (*Unknown) isEvent()             {}
