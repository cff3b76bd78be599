package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// detailFields 各 post_type 的二级类型字段，meta_event 没有
var detailFields = map[string]string{
	PostMessage: "message_type",
	PostNotice:  "notice_type",
	PostRequest: "request_type",
}

type variantKey struct {
	postType   string
	detailType string
}

type variant struct {
	name  string
	build func() Event
}

// variants (post_type, 二级类型) 到事件类型的映射
// 好友戳一戳与群戳一戳共用 poke，上游没有可靠的区分字段，统一按群戳一戳解码
var variants = map[variantKey]variant{
	{PostMessage, "private"}:       {"PrivateMessage", func() Event { return &PrivateMessage{} }},
	{PostMessage, "group"}:         {"GroupMessage", func() Event { return &GroupMessage{} }},
	{PostNotice, "group_upload"}:   {"GroupFileUpload", func() Event { return &GroupFileUpload{} }},
	{PostNotice, "group_admin"}:    {"GroupAdminChange", func() Event { return &GroupAdminChange{} }},
	{PostNotice, "group_decrease"}: {"GroupMemberReduce", func() Event { return &GroupMemberReduce{} }},
	{PostNotice, "group_increase"}: {"GroupMemberIncrease", func() Event { return &GroupMemberIncrease{} }},
	{PostNotice, "group_ban"}:      {"GroupMute", func() Event { return &GroupMute{} }},
	{PostNotice, "friend_add"}:     {"FriendAdd", func() Event { return &FriendAdd{} }},
	{PostNotice, "group_recall"}:   {"GroupMessageRecall", func() Event { return &GroupMessageRecall{} }},
	{PostNotice, "friend_recall"}:  {"FriendMessageRecall", func() Event { return &FriendMessageRecall{} }},
	{PostNotice, "poke"}:           {"GroupPoke", func() Event { return &GroupPoke{} }},
	{PostNotice, "offline_file"}:   {"OfflineFileUpload", func() Event { return &OfflineFileUpload{} }},
	{PostRequest, "friend"}:        {"FriendRequest", func() Event { return &FriendRequest{} }},
	{PostRequest, "group"}:         {"GroupRequest", func() Event { return &GroupRequest{} }},
	{PostMeta, ""}:                 {"MetaEvent", func() Event { return &MetaEvent{} }},
}

// Lookup 返回 (post_type, 二级类型) 对应的事件类型名
// meta_event 的二级类型传空串
func Lookup(postType, detailType string) (string, bool) {
	v, ok := variants[variantKey{postType, detailType}]
	return v.name, ok
}

// Classify 解析一条上报事件
// 无法识别的类型返回 *Unknown；只有 JSON 非法、缺少类型字段、已知类型结构不匹配时返回错误
func Classify(raw []byte) (Event, error) {
	if !gjson.ValidBytes(raw) {
		var v interface{}
		return nil, fmt.Errorf("%w: %v", ErrDecode, json.Unmarshal(raw, &v))
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, &MissingDiscriminatorError{Field: "post_type"}
	}

	postType := root.Get("post_type")
	if postType.Type != gjson.String {
		return nil, &MissingDiscriminatorError{Field: "post_type"}
	}

	detailType := ""
	if field, ok := detailFields[postType.Str]; ok {
		detail := root.Get(field)
		if detail.Type != gjson.String {
			return nil, &MissingDiscriminatorError{Field: field}
		}
		detailType = detail.Str
	}

	v, ok := variants[variantKey{postType.Str, detailType}]
	if !ok {
		return newUnknown(raw), nil
	}

	ev := v.build()
	if missing := missingFields(root, reflect.TypeOf(ev).Elem()); len(missing) > 0 {
		return nil, &MalformedPayloadError{
			Variant: v.name,
			Err:     fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}
	if err := json.Unmarshal(raw, ev); err != nil {
		return nil, &MalformedPayloadError{Variant: v.name, Err: err}
	}
	return ev, nil
}

// ClassifyValue 解析已反序列化的 JSON 值
func ClassifyValue(value interface{}) (Event, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Classify(raw)
}

func newUnknown(raw []byte) *Unknown {
	u := &Unknown{Raw: append([]byte(nil), raw...)}
	root := gjson.ParseBytes(raw)
	u.PostType = root.Get("post_type").String()
	u.SelfID = root.Get("self_id").Int()
	u.Time = root.Get("time").Int()
	return u
}

// requiredCache reflect.Type -> []string
var requiredCache sync.Map

// missingFields 检查顶层必填字段，null 视为缺失
func missingFields(root gjson.Result, t reflect.Type) []string {
	var missing []string
	for _, name := range requiredFields(t) {
		if v := root.Get(name); !v.Exists() || v.Type == gjson.Null {
			missing = append(missing, name)
		}
	}
	return missing
}

// requiredFields 收集结构体（含嵌入结构体）中没有 omitempty 的 json 字段
func requiredFields(t reflect.Type) []string {
	if cached, ok := requiredCache.Load(t); ok {
		return cached.([]string)
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup("json")
		if f.Anonymous && !hasTag && f.Type.Kind() == reflect.Struct {
			fields = append(fields, requiredFields(f.Type)...)
			continue
		}
		if !f.IsExported() || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "omitempty") {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, name)
	}

	requiredCache.Store(t, fields)
	return fields
}
