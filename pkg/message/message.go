// Package message 实现 OneBot 消息段与 CQ 码之间的转换
package message

import "strings"

// Message 有序的消息段序列
type Message []Segment

// New 由消息段创建消息
func New(segments ...Segment) Message {
	return append(Message(nil), segments...)
}

// FromText 创建纯文本消息
func FromText(s string) Message {
	return Message{Text(s)}
}

// Append 追加消息段
func (m Message) Append(segments ...Segment) Message {
	return append(m, segments...)
}

// String 编码为 CQ 码字符串，段之间没有分隔符
func (m Message) String() string {
	var b strings.Builder
	for _, seg := range m {
		b.WriteString(seg.String())
	}
	return b.String()
}

// PlainText 只拼接文本段
func (m Message) PlainText() string {
	var b strings.Builder
	for _, seg := range m {
		if seg.Type == TypeText {
			b.WriteString(seg.Data["text"])
		}
	}
	return b.String()
}

// Equal 逐段比较
func (m Message) Equal(o Message) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if !m[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Raw 已经编码好的 CQ 码字符串，发送时原样使用
type Raw string

func (r Raw) String() string { return string(r) }

// Parse 解析为消息段
func (r Raw) Parse() (Message, error) { return Parse(string(r)) }
