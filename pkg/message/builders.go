package message

import "strconv"

// Text 文本段
func Text(text string) Segment {
	seg := Segment{Type: TypeText}
	seg.Set("text", text)
	return seg
}

// Face QQ 表情
func Face(id int) Segment {
	seg := Segment{Type: TypeFace}
	seg.Set("id", strconv.Itoa(id))
	return seg
}

// At @某人
func At(qq int64) Segment {
	seg := Segment{Type: TypeAt}
	seg.Set("qq", strconv.FormatInt(qq, 10))
	return seg
}

// AtAll @全体成员
func AtAll() Segment {
	seg := Segment{Type: TypeAt}
	seg.Set("qq", "all")
	return seg
}

// Emoji emoji 表情
func Emoji(id int) Segment {
	seg := Segment{Type: TypeEmoji}
	seg.Set("id", strconv.Itoa(id))
	return seg
}

// RPS 猜拳魔法表情
func RPS() Segment {
	return Segment{Type: TypeRPS, Data: map[string]string{}}
}

// Reply 回复某条消息
func Reply(messageID int64) Segment {
	seg := Segment{Type: TypeReply}
	seg.Set("id", strconv.FormatInt(messageID, 10))
	return seg
}

// ImageOption 图片段可选参数
type ImageOption func(*Segment)

// WithCache 是否使用已缓存的文件
func WithCache(cache bool) ImageOption {
	return func(s *Segment) { s.Set("cache", boolFlag(cache)) }
}

// WithEffectID 特效 ID
func WithEffectID(id uint32) ImageOption {
	return func(s *Segment) { s.Set("id", strconv.FormatUint(uint64(id), 10)) }
}

// WithImageType 图片类型，flash 或 show
func WithImageType(typ string) ImageOption {
	return func(s *Segment) { s.Set("type", typ) }
}

// WithSubType 图片子类型，仅群消息有效
func WithSubType(subType uint32) ImageOption {
	return func(s *Segment) { s.Set("subType", strconv.FormatUint(uint64(subType), 10)) }
}

// Image 图片段
// file 可以是文件名、绝对路径、URL 或 base64
func Image(file string, opts ...ImageOption) Segment {
	seg := Segment{Type: TypeImage}
	seg.Set("file", file)
	for _, opt := range opts {
		opt(&seg)
	}
	return seg
}

// RecordOption 语音段可选参数
type RecordOption func(*Segment)

// WithMagic 变声
func WithMagic(magic bool) RecordOption {
	return func(s *Segment) { s.Set("magic", boolFlag(magic)) }
}

// WithRecordCache 是否使用已缓存的文件
func WithRecordCache(cache bool) RecordOption {
	return func(s *Segment) { s.Set("cache", boolFlag(cache)) }
}

// WithProxy 下载时是否走代理
func WithProxy(proxy bool) RecordOption {
	return func(s *Segment) { s.Set("proxy", boolFlag(proxy)) }
}

// WithTimeout 下载超时（秒）
func WithTimeout(seconds int) RecordOption {
	return func(s *Segment) { s.Set("timeout", strconv.Itoa(seconds)) }
}

// Record 语音段
func Record(file string, opts ...RecordOption) Segment {
	seg := Segment{Type: TypeRecord}
	seg.Set("file", file)
	for _, opt := range opts {
		opt(&seg)
	}
	return seg
}
