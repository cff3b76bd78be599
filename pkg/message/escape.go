package message

import (
	"sort"
	"strings"
)

var (
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"[", "&#91;",
		"]", "&#93;",
	)
	commaEscaper = strings.NewReplacer(
		"&", "&amp;",
		"[", "&#91;",
		"]", "&#93;",
		",", "&#44;",
	)
)

// Escape 转义 CQ 码中的特殊字符
// comma 控制是否转义逗号，属性值必须转义逗号
func Escape(s string, comma bool) string {
	// Replacer 单遍扫描，& 不会被二次转义
	if comma {
		return commaEscaper.Replace(s)
	}
	return escaper.Replace(s)
}

// Unescape 反转义 CQ 码
// &amp; 必须最后处理，否则 "&amp;#91;" 会被错误还原成 "["
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "&#44;", ",")
	s = strings.ReplaceAll(s, "&#91;", "[")
	s = strings.ReplaceAll(s, "&#93;", "]")
	return strings.ReplaceAll(s, "&amp;", "&")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
