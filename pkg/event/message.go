package event

import "github.com/Lichas/cqhttp-go/pkg/message"

// Segments 将 message 字段解析为消息段
func (m *MessageBase) Segments() (message.Message, error) {
	return message.Parse(m.Message)
}

// IsAnonymous 是否为匿名消息
func (g *GroupMessage) IsAnonymous() bool {
	return g.Anonymous != nil
}
