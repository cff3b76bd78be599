package bus

import "fmt"

// 出站消息类型
const (
	TargetPrivate = "private"
	TargetGroup   = "group"
)

// Outbound 出站消息，由发送协程交给 API 发出
type Outbound struct {
	MessageType string `json:"messageType"` // private, group
	TargetID    int64  `json:"targetId"`    // user_id 或 group_id
	SelfID      int64  `json:"selfId,omitempty"`
	Message     string `json:"message"` // CQ 码
}

// NewOutbound 创建出站消息
func NewOutbound(messageType string, targetID, selfID int64, message fmt.Stringer) *Outbound {
	return &Outbound{
		MessageType: messageType,
		TargetID:    targetID,
		SelfID:      selfID,
		Message:     message.String(),
	}
}

// Key 会话标识 type:id
func (o *Outbound) Key() string {
	return fmt.Sprintf("%s:%d", o.MessageType, o.TargetID)
}
