package message

import (
	"encoding/json"
	"strconv"
	"strings"
)

// 常用消息段类型
const (
	TypeText   = "text"
	TypeFace   = "face"
	TypeAt     = "at"
	TypeEmoji  = "emoji"
	TypeImage  = "image"
	TypeRecord = "record"
	TypeRPS    = "rps"
	TypeReply  = "reply"
)

// Segment 消息段
// Data 中的值一律以字符串保存，和 CQ 码保持一致
type Segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`

	// keys 记录属性插入顺序，编码时按此顺序输出
	keys []string
}

// NewSegment 创建消息段
// data 为 map 时无法保证顺序，属性按 key 排序后写入
func NewSegment(typ string, data map[string]string) Segment {
	seg := Segment{Type: typ, Data: make(map[string]string, len(data))}
	for _, k := range sortedKeys(data) {
		seg.Set(k, data[k])
	}
	return seg
}

// Set 设置属性，已存在的 key 保持原位置
func (s *Segment) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	if _, ok := s.Data[key]; !ok {
		// 限制容量，避免值拷贝之间共享底层数组
		s.keys = append(s.keys[:len(s.keys):len(s.keys)], key)
	}
	s.Data[key] = value
}

// Get 获取属性
func (s Segment) Get(key string) (string, bool) {
	v, ok := s.Data[key]
	return v, ok
}

// Keys 返回属性顺序
// 直接改写 Data 新增的 key 排在已记录顺序之后，按字典序
func (s Segment) Keys() []string {
	keys := make([]string, 0, len(s.Data))
	seen := make(map[string]bool, len(s.keys))
	for _, k := range s.keys {
		if _, ok := s.Data[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	if len(keys) == len(s.Data) {
		return keys
	}
	for _, k := range sortedKeys(s.Data) {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// String 编码为 CQ 码，text 段原样输出
func (s Segment) String() string {
	if s.Type == TypeText {
		return s.Data["text"]
	}

	var b strings.Builder
	b.WriteString("[CQ:")
	b.WriteString(s.Type)
	for _, k := range s.Keys() {
		b.WriteByte(',')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(Escape(s.Data[k], true))
	}
	b.WriteByte(']')
	return b.String()
}

// UnmarshalJSON 反序列化时保留 data 中的 key 顺序
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Type = raw.Type
	s.Data = make(map[string]string)
	s.keys = nil
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(string(raw.Data)))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		s.Set(key, stringify(v))
	}
	return nil
}

// Equal 比较类型与属性，不比较顺序
func (s Segment) Equal(o Segment) bool {
	if s.Type != o.Type || len(s.Data) != len(o.Data) {
		return false
	}
	for k, v := range s.Data {
		if ov, ok := o.Data[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return boolFlag(val)
	case nil:
		return ""
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
