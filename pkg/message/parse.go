package message

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnterminatedCode CQ 码缺少结尾的 ]
	ErrUnterminatedCode = errors.New("unterminated CQ code")
	// ErrMalformedCode CQ 码类型为空或属性缺少 =
	ErrMalformedCode = errors.New("malformed CQ code")
)

const codePrefix = "[CQ:"

// Parse 将 CQ 码字符串解析为消息
// 文本部分与属性值都会反转义
func Parse(s string) (Message, error) {
	var msg Message
	offset := 0

	for offset < len(s) {
		start := strings.Index(s[offset:], codePrefix)
		if start < 0 {
			msg = append(msg, Text(Unescape(s[offset:])))
			break
		}
		start += offset
		if start > offset {
			msg = append(msg, Text(Unescape(s[offset:start])))
		}

		end := strings.IndexByte(s[start:], ']')
		if end < 0 {
			return nil, fmt.Errorf("offset %d: %w", start, ErrUnterminatedCode)
		}
		end += start

		seg, err := parseCode(s[start+len(codePrefix) : end])
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", start, err)
		}
		msg = append(msg, seg)
		offset = end + 1
	}

	return msg, nil
}

// parseCode 解析 [CQ: 与 ] 之间的内容
func parseCode(body string) (Segment, error) {
	parts := strings.Split(body, ",")
	typ := strings.TrimSpace(parts[0])
	if typ == "" {
		return Segment{}, fmt.Errorf("empty type: %w", ErrMalformedCode)
	}

	seg := Segment{Type: typ, Data: map[string]string{}}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return Segment{}, fmt.Errorf("attribute %q: %w", part, ErrMalformedCode)
		}
		seg.Set(key, Unescape(value))
	}
	return seg, nil
}
